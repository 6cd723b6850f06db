package detectionHandler

import (
	detectionService "FaceDetection/internal/api/detection/service"
	"FaceDetection/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"time"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	wsReadTimeout    time.Duration
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		wsReadTimeout:    60 * time.Second,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/", h.Welcome)

	detect := srv.Group("/detect")
	detect.Post("", h.middleware.NewRateLimiter, h.DetectFace)
	detect.Use("/ws", wsMiddleware)
	detect.Get("/ws", websocket.New(h.handleWebSocket))

	srv.Get("/stats", h.GetStats)
	srv.Get("/detections", h.GetRecentDetections)
}
