package config

import (
	"FaceDetection/database/postgres"
	detectionHandler "FaceDetection/internal/api/detection/handler"
	detectionRepository "FaceDetection/internal/api/detection/repository"
	detectionService "FaceDetection/internal/api/detection/service"
	"FaceDetection/internal/middleware"
	"FaceDetection/pkg/archive"
	"FaceDetection/pkg/detector"
	"FaceDetection/pkg/redis"
	"FaceDetection/pkg/s3"
	"FaceDetection/pkg/stats"
	"FaceDetection/pkg/utils"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/time/rate"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	detector    detector.IDetector
	redisServer redis.IRedis
	stats       stats.IStats
	archive     archive.IArchive
	repository  detectionRepository.Repository
	handlers    []handler
	mounted     bool
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.DefaultOptions())
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.detector == nil {
		server.detector = detector.New()
	}
	if server.stats == nil {
		server.stats = stats.New(server.redisServer)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware(cfg RateLimitConfig) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Options{
			RateLimit: rate.Limit(cfg.RPS),
			Burst:     cfg.Burst,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithRedis connects the stats counters to Redis. Without an address the
// counters stay in process memory.
func WithRedis(cfg RedisConfig) ServerOption {
	return func(s *Server) error {
		if !cfg.Enabled() {
			return nil
		}

		client, err := redis.New(redis.Options{
			Address:  cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to Redis: %v", err)
			}
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		s.redisServer = client
		s.stats = stats.New(client)
		return nil
	}
}

func WithArchive(cfg ArchiveConfig) ServerOption {
	return func(s *Server) error {
		switch cfg.Driver {
		case "", archive.DriverNone:
			return nil
		case archive.DriverLocal:
			local, err := archive.NewLocal(cfg.Dir)
			if err != nil {
				return fmt.Errorf("failed to create local archive: %w", err)
			}
			s.archive = local
		case archive.DriverS3:
			client, err := s3.New(s3.Options{
				Region:          cfg.S3.Region,
				AccessKeyID:     cfg.S3.AccessKeyID,
				SecretAccessKey: cfg.S3.SecretAccessKey,
				Bucket:          cfg.S3.Bucket,
				Endpoint:        cfg.S3.Endpoint,
			})
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to initialize S3 client: %v", err)
				}
				return fmt.Errorf("failed to create S3 client: %w", err)
			}
			s.archive = archive.NewS3(client, cfg.Prefix)
		default:
			return fmt.Errorf("unknown archive driver %q", cfg.Driver)
		}

		if s.log != nil {
			s.log.WithField("driver", cfg.Driver).Info("Image archive enabled")
		}
		return nil
	}
}

// WithDatabase opens Postgres and prepares the detection history table.
// Without a host the history feature is off.
func WithDatabase(cfg DatabaseConfig) ServerOption {
	return func(s *Server) error {
		if !cfg.Enabled() {
			return nil
		}
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before database")
		}

		db, err := postgres.New(postgres.Options{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Name:     cfg.Name,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			s.log.Errorf("Failed to connect to database: %v", err)
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		repo := detectionRepository.New(db, s.log)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to migrate detection history: %w", err)
		}

		s.db = db
		s.repository = repo
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Detection
	detectionServices := detectionService.NewDetectionService(s.log, s.detector, s.utils, s.stats, s.archive, s.repository)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices)

	s.handlers = append(s.handlers, detectionHandlers)
}

// mount installs the global middleware chain and the registered handlers
// on the engine root. It is safe to call more than once.
func (s *Server) mount() {
	if s.mounted {
		return
	}
	s.mounted = true

	s.engine.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.engine.Use(s.middleware.NewCORSMiddleware())
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	for _, h := range s.handlers {
		h.Start(s.engine)
	}
}

func (s *Server) Run(addr string) error {
	s.mount()

	s.log.WithField("address", addr).Info("Starting face detection server")
	return s.engine.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		firstErr = fmt.Errorf("failed to shutdown fiber: %w", err)
	}

	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close redis: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
	}

	return firstErr
}
