package handlerUtil

import (
	"FaceDetection/internal/api/detection"
	"FaceDetection/pkg/log"
	"FaceDetection/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	if errors.Is(err, detection.ErrInternalServerError) {
		fields := log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}
		traceID := log.TraceID(fields)
		fields["trace_id"] = traceID
		h.logger.WithFields(fields).Error("Internal server error")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "Internal server error",
			Details: "trace id " + traceID,
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: respErr.Error()})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "An unexpected error occurred",
	})
}

// HandleValidationError answers 422, the status clients of this API expect
// for a body that cannot be parsed or is missing required fields.
func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}

// FiberErrorHandler renders errors that escape handlers (unknown routes,
// method mismatches, recovered panics) in the same JSON shape.
func (h *ErrorHandler) FiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An unexpected error occurred"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	requestID, _ := c.Locals("X-Request-ID").(string)
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     code,
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.WithFields(fields).Error("Unhandled server error")
	} else {
		h.logger.WithFields(fields).Warn("Request rejected")
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
