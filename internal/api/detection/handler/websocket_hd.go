package detectionHandler

import (
	"FaceDetection/internal/api/detection"
	"FaceDetection/internal/middleware"
	contextPkg "FaceDetection/pkg/context"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *DetectionHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}
	ctx := contextPkg.WithRequestID(context.Background(), requestID)

	h.log.WithField("request_id", requestID).Info("Detection WebSocket client connected")
	defer h.log.WithField("request_id", requestID).Info("Detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(h.wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Detection WebSocket error: %v", err)
			} else {
				h.log.Info("Detection WebSocket connection closed")
			}
			break
		}

		var outcome *detection.DetectionOutcome
		switch messageType {
		case websocket.BinaryMessage:
			outcome, err = h.detectionService.DetectBytes(ctx, detection.SourceWebSocket, message)
		case websocket.TextMessage:
			outcome, err = h.detectionService.DetectBase64(ctx, detection.SourceWebSocket, string(message))
		default:
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		reply := outcome.Result
		if err != nil {
			reply = detection.ErrorMessage(err)
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}

		if err := c.SetWriteDeadline(time.Time{}); err != nil {
			h.log.Errorf("Error resetting write deadline: %v", err)
			break
		}
	}
}
