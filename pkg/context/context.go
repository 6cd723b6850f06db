package context

import (
	"context"
	"github.com/gofiber/fiber/v2"
)

type requestIDKey struct{}

// RequestIDKey is also looked up as a plain string by pkg/log, so both forms are stored.
const RequestIDKey = "request_id"

const fiberRequestIDKey = "X-Request-ID"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	//nolint:staticcheck // pkg/log reads the string key
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func FromFiberCtx(c *fiber.Ctx) context.Context {
	ctx := context.Background()

	requestID, ok := c.Locals(fiberRequestIDKey).(string)
	if !ok || requestID == "" {
		requestID = c.Get(fiberRequestIDKey)

		if requestID == "" {
			requestID = "unknown"
		}
	}

	return WithRequestID(ctx, requestID)
}
