package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sanjeevdwivedi/openai-stt-ha/internal/config"
	"github.com/sanjeevdwivedi/openai-stt-ha/internal/metrics"
	"github.com/sanjeevdwivedi/openai-stt-ha/internal/stt"
)

// Prometheus collectors register globally, so the whole test binary shares
// one Metrics instance.
var testMetrics = metrics.NewMetrics()

func testConfig() *config.Config {
	return &config.Config{
		STT: config.STTConfig{
			APIURL:  "http://localhost:9000",
			Timeout: 30,
		},
		HTTP: config.HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: true,
		},
		Audio: config.AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			BitDepth:   16,
		},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
	}
}

func newTestServer(t *testing.T, asrURL string) *HTTPServer {
	t.Helper()

	cfg := testConfig()
	cfg.STT.APIURL = asrURL

	client, err := stt.NewClient(stt.Config{APIURL: asrURL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	httpCfg := HTTPServerConfig{Port: cfg.HTTP.Port, Address: cfg.HTTP.Address, Enabled: true}

	return NewHTTPServer(httpCfg, logger, cfg, client, testMetrics)
}

func TestHandleTranscribeSuccess(t *testing.T) {
	asr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "hello world")
	}))
	defer asr.Close()

	srv := newTestServer(t, asr.URL)

	// 1 second of 16kHz mono 16-bit silence
	pcm := make([]byte, 32000)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", bytes.NewReader(pcm))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Text            string  `json:"text"`
		DurationSeconds float64 `json:"duration_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp.Text != "hello world" {
		t.Errorf("Expected %q, got %q", "hello world", resp.Text)
	}

	if math.Abs(resp.DurationSeconds-1.0) > 0.001 {
		t.Errorf("Expected duration 1.000, got %.3f", resp.DurationSeconds)
	}
}

func TestHandleTranscribeServiceFailure(t *testing.T) {
	asr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer asr.Close()

	srv := newTestServer(t, asr.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", bytes.NewReader([]byte{0x00, 0x01}))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "model crashed") {
		t.Errorf("Expected diagnostic text in error body, got %s", rec.Body.String())
	}
}

func TestHandleTranscribeEmptyBody(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", bytes.NewReader(nil))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty audio, got %d", rec.Code)
	}
}

func TestHandleTranscribeInvalidQuery(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe?sample_rate=fast", bytes.NewReader([]byte{0x00, 0x01}))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid sample_rate, got %d", rec.Code)
	}
}

func TestHandleTranscribeUnsupportedProfile(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe?sample_rate=44100", bytes.NewReader([]byte{0x00, 0x01}))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported sample rate, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "sample rate") {
		t.Errorf("Expected profile diagnostic in body, got %s", rec.Body.String())
	}
}

func TestHandleTranscribeMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcribe", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Failed to parse health response: %v", err)
	}

	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:9")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "transcription") {
		t.Errorf("Expected transcription stats in body, got %s", rec.Body.String())
	}
}

func TestHandleConfig(t *testing.T) {
	srv := newTestServer(t, "http://asr.example:9000")

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "http://asr.example:9000") {
		t.Errorf("Expected api_url in config body, got %s", rec.Body.String())
	}
}
