package detectionHandler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FaceDetection/internal/api/detection"
	detectionService "FaceDetection/internal/api/detection/service"
	"FaceDetection/internal/middleware"
	"FaceDetection/pkg/detector"
	"FaceDetection/pkg/stats"
	"FaceDetection/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mw := middleware.New(logger, middleware.DefaultOptions())
	svc := detectionService.NewDetectionService(logger, detector.New(), utils.New(), stats.New(nil), nil, nil)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc).Start(app)
	return app
}

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func postDetect(t *testing.T, app *fiber.App, body string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func detectString(t *testing.T, app *fiber.App, image string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"image": image})
	status, raw := postDetect(t, app, string(payload))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body = %s", status, raw)
	}

	var got string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("response %s is not a JSON string: %v", raw, err)
	}
	return got
}

func TestWelcome(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body["message"] != "Welcome to the face detection API" {
		t.Fatalf("body = %v", body)
	}
}

func TestDetectFace_ValidPNG(t *testing.T) {
	app := newTestApp(t)

	got := detectString(t, app, base64.StdEncoding.EncodeToString(onePixelPNG(t)))
	if got != "anh Thua" {
		t.Fatalf("result = %q, want %q", got, "anh Thua")
	}
}

func TestDetectFace_ResultIndependentOfInput(t *testing.T) {
	app := newTestApp(t)

	big := image.NewGray(image.Rect(0, 0, 64, 48))
	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	inputs := []string{
		base64.StdEncoding.EncodeToString(onePixelPNG(t)),
		base64.StdEncoding.EncodeToString(buf.Bytes()),
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(onePixelPNG(t)),
	}
	for i, in := range inputs {
		if got := detectString(t, app, in); got != detector.FaceResult {
			t.Errorf("input %d: result = %q", i, got)
		}
	}
}

func TestDetectFace_ProcessingErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		image  string
		detail string
	}{
		{name: "invalid base64", image: "not-valid-base64!!", detail: "illegal base64 data at input byte 3"},
		{name: "not an image", image: base64.StdEncoding.EncodeToString([]byte("plain text, not pixels")), detail: "image: unknown format"},
		{name: "empty payload", image: "", detail: "image: unknown format"},
		{name: "truncated png", image: base64.StdEncoding.EncodeToString(onePixelPNG(t)[:30])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectString(t, app, tt.image)
			if !strings.HasPrefix(got, detection.ErrorResponsePrefix) {
				t.Fatalf("result = %q, want prefix %q", got, detection.ErrorResponsePrefix)
			}
			if tt.detail != "" && got != detection.ErrorResponsePrefix+tt.detail {
				t.Fatalf("result = %q, want detail %q", got, tt.detail)
			}
		})
	}
}

func TestDetectFace_InvalidBody(t *testing.T) {
	app := newTestApp(t)

	tests := map[string]string{
		"missing field": `{}`,
		"null image":    `{"image": null}`,
		"wrong type":    `{"image": 42}`,
		"malformed":     `{"image": `,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			status, raw := postDetect(t, app, body)
			if status != fiber.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body = %s", status, raw)
			}

			var resp map[string]string
			if err := json.Unmarshal(raw, &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp["code"] != "VALIDATION_ERROR" {
				t.Fatalf("body = %v", resp)
			}
		})
	}
}

func TestDetectFace_NoContentType(t *testing.T) {
	app := newTestApp(t)

	payload, _ := json.Marshal(map[string]string{"image": base64.StdEncoding.EncodeToString(onePixelPNG(t))})
	req := httptest.NewRequest(http.MethodPost, "/detect", bytes.NewReader(payload))
	req.Header.Del(fiber.HeaderContentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != detector.FaceResult {
		t.Fatalf("result = %q", got)
	}

	// A header-less body that is not JSON is still a validation failure.
	req = httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader("image=abc"))
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetStats(t *testing.T) {
	app := newTestApp(t)

	detectString(t, app, base64.StdEncoding.EncodeToString(onePixelPNG(t)))
	detectString(t, app, "not-valid-base64!!")
	detectString(t, app, base64.StdEncoding.EncodeToString(onePixelPNG(t)))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/stats", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var snap stats.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := stats.Snapshot{Total: 3, Succeeded: 2, Failed: 1}
	if snap != want {
		t.Fatalf("stats = %+v, want %+v", snap, want)
	}
}

func TestGetRecentDetections(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/detections", status: fiber.StatusNotFound},
		{path: "/detections?limit=5", status: fiber.StatusNotFound},
		{path: "/detections?limit=500", status: fiber.StatusUnprocessableEntity},
		{path: "/detections?limit=abc", status: fiber.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
		if err != nil {
			t.Fatalf("%s: request failed: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}

func TestDetectWebSocket(t *testing.T) {
	app := newTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	defer func() {
		_ = app.Shutdown()
	}()

	dialer := gorillaws.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial("ws://"+ln.Addr().String()+"/detect/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	exchange := func(messageType int, data []byte) string {
		t.Helper()
		if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			t.Fatalf("set write deadline: %v", err)
		}
		if err := conn.WriteMessage(messageType, data); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			t.Fatalf("set read deadline: %v", err)
		}
		var reply string
		if err := conn.ReadJSON(&reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		return reply
	}

	if got := exchange(gorillaws.BinaryMessage, onePixelPNG(t)); got != detector.FaceResult {
		t.Errorf("binary frame result = %q", got)
	}

	encoded := base64.StdEncoding.EncodeToString(onePixelPNG(t))
	if got := exchange(gorillaws.TextMessage, []byte(encoded)); got != detector.FaceResult {
		t.Errorf("text frame result = %q", got)
	}

	if got := exchange(gorillaws.TextMessage, []byte("not-valid-base64!!")); !strings.HasPrefix(got, detection.ErrorResponsePrefix) {
		t.Errorf("invalid frame result = %q", got)
	}

	if got := exchange(gorillaws.BinaryMessage, []byte("garbage")); !strings.HasPrefix(got, detection.ErrorResponsePrefix) {
		t.Errorf("garbage frame result = %q", got)
	}
}

func TestDetectWebSocket_RequiresUpgrade(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/detect/ws", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
