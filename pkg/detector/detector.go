package detector

import (
	"image"
	"sync"
)

const (
	DefaultResult = "Xin lỗi, tôi không thể nhận diện bạn"
	FaceResult    = "anh Thua"
)

type IDetector interface {
	Detect(img image.Image) string
	Result() string
}

// faceDetector is a placeholder for face recognition. Detect never looks at
// the image and always reports the same person.
type faceDetector struct {
	mu     sync.RWMutex
	result string
}

func New() IDetector {
	return &faceDetector{
		result: DefaultResult,
	}
}

func (d *faceDetector) Detect(_ image.Image) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.result = FaceResult
	return d.result
}

func (d *faceDetector) Result() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.result
}
