package middleware

import (
	"FaceDetection/pkg/log"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// Fields whose content is replaced by its length instead of being logged.
var bulkFields = []string{"image", "image_base64", "frame"}

var sensitiveFields = []string{
	"password", "token", "secret", "key", "auth",
	"credential", "authorization",
}

type loggingMiddleware struct {
	logger *logrus.Logger
}

func newLoggingMiddleware(logger *logrus.Logger) *loggingMiddleware {
	return &loggingMiddleware{
		logger: logger,
	}
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return m.loggingMiddleware.handle
}

func (l *loggingMiddleware) handle(c *fiber.Ctx) error {
	start := time.Now()

	requestID, ok := c.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		requestID = "unknown"
	}

	c.Locals(log.RequestIDKey, requestID)

	err := c.Next()

	latency := time.Since(start)
	status := c.Response().StatusCode()

	var fiberErr *fiber.Error
	if err != nil {
		status = fiber.StatusInternalServerError
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
	}

	logFields := log.Fields{
		"request_id":    requestID,
		"method":        c.Method(),
		"path":          c.Path(),
		"status":        status,
		"latency_ms":    latency.Milliseconds(),
		"ip":            c.IP(),
		"host":          c.Hostname(),
		"user_agent":    c.Get(fiber.HeaderUserAgent),
		"referer":       c.Get(fiber.HeaderReferer),
		"response_size": len(c.Response().Body()),
	}

	if body := c.Request().Body(); len(body) > 0 {
		logFields["request_body"] = sanitizeRequestBody(body)
	}

	entry := l.logger.WithFields(logFields)
	switch {
	case status >= 500:
		entry.Error("Server error")
	case status >= 400:
		entry.Warn("Client error")
	default:
		entry.Info("Success")
	}

	return err
}

func sanitizeRequestBody(body []byte) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return fmt.Sprintf("[non-JSON body, %d bytes]", len(body))
	}

	for _, field := range bulkFields {
		if v, exists := jsonBody[field]; exists {
			if s, ok := v.(string); ok {
				jsonBody[field] = fmt.Sprintf("[%d chars]", len(s))
			}
		}
	}

	for name := range jsonBody {
		lower := strings.ToLower(name)
		for _, field := range sensitiveFields {
			if strings.Contains(lower, field) {
				jsonBody[name] = "[SECRET]"
				break
			}
		}
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
