package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes a decoded image the way PIL reports it: format, size and mode.
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mode   string `json:"mode"`
}

func (i Info) Size() string {
	return fmt.Sprintf("(%d, %d)", i.Width, i.Height)
}

// DecodeBase64 decodes a standard base64 payload. Surrounding whitespace,
// line breaks and a leading data URL header ("data:image/png;base64,") are
// tolerated; anything else outside the base64 alphabet is an error.
func DecodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)

	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ";base64,"); idx != -1 {
			payload = payload[idx+len(";base64,"):]
		}
	}

	payload = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)

	return base64.StdEncoding.DecodeString(payload)
}

// MaxPixels caps width*height of an accepted image. Headers are checked
// before any pixel buffer is allocated.
const MaxPixels = 178956970

// Decode parses data into an in-memory bitmap.
func Decode(data []byte) (image.Image, Info, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, err
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxPixels {
		return nil, Info{}, fmt.Errorf("image size (%d pixels) exceeds limit of %d pixels, could be decompression bomb", pixels, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, err
	}

	bounds := img.Bounds()
	return img, Info{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Mode:   Mode(img),
	}, nil
}

type opaquer interface {
	Opaque() bool
}

// Mode maps the Go color model of img to the closest PIL mode name.
func Mode(img image.Image) string {
	model := img.ColorModel()

	if _, ok := model.(color.Palette); ok {
		return "P"
	}

	switch model {
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.YCbCrModel:
		return "RGB"
	case color.AlphaModel, color.Alpha16Model:
		return "LA"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.NYCbCrAModel:
		if o, ok := img.(opaquer); ok && o.Opaque() {
			return "RGB"
		}
		return "RGBA"
	default:
		return "unknown"
	}
}
