package detectionHandler

import (
	"FaceDetection/internal/api/detection"
	contextPkg "FaceDetection/pkg/context"
	"FaceDetection/pkg/handlerUtil"
	"FaceDetection/pkg/log"
	"github.com/gofiber/fiber/v2"
)

const defaultDetectionsLimit = 20

func (h *DetectionHandler) Welcome(ctx *fiber.Ctx) error {
	return ctx.JSON(detection.WelcomeResponse{
		Message: detection.WelcomeMessage,
	})
}

// DetectFace always answers 200 once the body is parsed. Decoding and
// detection failures are reported inside the JSON string body.
func (h *DetectionHandler) DetectFace(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	var req detection.ImageRequest
	if err := h.parseImageRequest(ctx, &req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	outcome, err := h.detectionService.DetectBase64(c, detection.SourceHTTP, *req.Image)
	if err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Debug("Returning processing error to client")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, detection.ErrorMessage(err))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, outcome.Result)
}

// parseImageRequest treats a body sent without Content-Type as JSON.
func (h *DetectionHandler) parseImageRequest(ctx *fiber.Ctx, req *detection.ImageRequest) error {
	if len(ctx.Request().Header.ContentType()) == 0 {
		return ctx.App().Config().JSONDecoder(ctx.Body(), req)
	}
	return ctx.BodyParser(req)
}

func (h *DetectionHandler) GetStats(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	snap, err := h.detectionService.GetStats(contextPkg.FromFiberCtx(ctx))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_stats")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, snap)
}

func (h *DetectionHandler) GetRecentDetections(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var query detection.DetectionLogsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}
	if query.Limit == 0 {
		query.Limit = defaultDetectionsLimit
	}

	logs, err := h.detectionService.GetRecentDetections(contextPkg.FromFiberCtx(ctx), query.Limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_recent_detections")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"data": logs,
	})
}
