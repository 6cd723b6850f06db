package detection

import (
	"FaceDetection/pkg/imaging"
	"time"
)

const (
	WelcomeMessage      = "Welcome to the face detection API"
	ErrorResponsePrefix = "Error processing image: "
)

type Source string

const (
	SourceHTTP      Source = "http"
	SourceWebSocket Source = "websocket"
)

// ImageRequest is the body of POST /detect. Image is a pointer so that a
// missing field fails validation while an empty string reaches the decoder.
type ImageRequest struct {
	Image *string `json:"image" validate:"required"`
}

type WelcomeResponse struct {
	Message string `json:"message"`
}

type ImageInfo struct {
	PayloadLength int    `json:"payload_length"`
	DecodedLength int    `json:"decoded_length"`
	Checksum      string `json:"checksum,omitempty"`
	imaging.Info
}

// DetectionOutcome is filled progressively, so on failure it still holds
// whatever was learned about the payload before the failing step.
type DetectionOutcome struct {
	LogID   string
	Result  string
	Info    ImageInfo
	Archive string
}

// ErrorMessage renders a processing failure the way clients receive it.
func ErrorMessage(err error) string {
	return ErrorResponsePrefix + err.Error()
}

type DetectionLogResponse struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"request_id"`
	Source        string    `json:"source"`
	PayloadLength int       `json:"payload_length"`
	DecodedLength int       `json:"decoded_length"`
	Checksum      string    `json:"checksum,omitempty"`
	Format        string    `json:"format,omitempty"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Mode          string    `json:"mode,omitempty"`
	Result        string    `json:"result,omitempty"`
	Error         string    `json:"error,omitempty"`
	Archive       string    `json:"archive,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type DetectionLogsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
