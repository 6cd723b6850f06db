package detection

import (
	"FaceDetection/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrHistoryDisabled     = response.NewError(http.StatusNotFound, "detection history is not enabled")
	ErrPanicRecovered      = response.NewError(http.StatusInternalServerError, "unexpected failure while processing image")
)
