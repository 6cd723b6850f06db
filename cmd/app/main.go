package main

import (
	"FaceDetection/internal/config"
	"FaceDetection/pkg/log"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	configFile string
	host       string
	port       int
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Face detection server stopped")
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "face-detection",
		Short:         "Face detection HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	root.Flags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	root.Flags().StringVar(&host, "host", "", "listen host (overrides APP_HOST)")
	root.Flags().IntVar(&port, "port", 0, "listen port (overrides APP_PORT)")

	return root
}

func run(cmd *cobra.Command) error {
	envErr := godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.App.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.App.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewLogger(log.Options{
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
		Env:   cfg.App.Env,
	})
	if envErr != nil {
		logger.Warnf("No .env file loaded: %v", envErr)
	}

	server, err := config.NewServer(
		config.WithFiber(config.NewFiber(logger, cfg.App)),
		config.WithLogger(logger),
		config.WithValidator(config.NewValidator()),
		config.WithMiddleware(cfg.RateLimit),
		config.WithUtils(),
		config.WithRedis(cfg.Redis),
		config.WithArchive(cfg.Archive),
		config.WithDatabase(cfg.Database),
	)
	if err != nil {
		return err
	}

	server.RegisterHandler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Run(cfg.App.Address()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
