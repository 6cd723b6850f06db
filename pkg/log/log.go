package log

import (
	"fmt"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

const RequestIDKey = "request_id"

type Fields = logrus.Fields

type Options struct {
	Level string
	Dir   string
	Env   string
}

// NewLogger builds the process-wide logger. Only the first call configures it,
// later calls return the same instance regardless of opts.
func NewLogger(opts ...Options) *logrus.Logger {
	once.Do(func() {
		opt := Options{
			Level: os.Getenv("LOG_LEVEL"),
			Dir:   os.Getenv("LOG_DIR"),
			Env:   os.Getenv("APP_ENV"),
		}
		if len(opts) > 0 {
			opt = opts[0]
		}

		logger = logrus.New()

		level, err := logrus.ParseLevel(opt.Level)
		if err != nil {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "02 Jan 06 - 15:04",
			HideKeys:        false,
			CallerFirst:     true,
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}

		if opt.Env != "test" {
			dir := opt.Dir
			if dir == "" {
				dir = "./storage/logs"
			}
			fileWriter := &lumberjack.Logger{
				Filename:   filepath.Join(dir, fmt.Sprintf("app-%s.log", time.Now().Format("2006-01-02"))),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100,
				MaxAge:     7,
				MaxBackups: 3,
			}
			writers = append(writers, fileWriter)
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

// TraceID returns the request id found in fields, or a fresh UUID when the
// request carries none.
func TraceID(fields Fields) string {
	if reqID, ok := fields[RequestIDKey].(string); ok && reqID != "" && reqID != "unknown" {
		return reqID
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

func Fatal(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	NewLogger().WithFields(fields).Fatal(msg)
}
