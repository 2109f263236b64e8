package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanjeevdwivedi/openai-stt-ha/internal/audio"
	"github.com/sanjeevdwivedi/openai-stt-ha/internal/config"
	"github.com/sanjeevdwivedi/openai-stt-ha/internal/metrics"
	"github.com/sanjeevdwivedi/openai-stt-ha/internal/stt"
)

// maxUploadBytes caps a single PCM upload; ~5 minutes of 16kHz 16-bit mono.
const maxUploadBytes = 10 << 20

// readChunkSize is the chunk size used when draining the upload body into
// the accumulation buffer.
const readChunkSize = 32 * 1024

// HTTPServer provides the transcription ingress and monitoring endpoints
type HTTPServer struct {
	server  *http.Server
	logger  *slog.Logger
	config  *config.Config
	client  *stt.Client
	metrics *metrics.Metrics

	startTime time.Time
}

// HTTPServerConfig contains HTTP server configuration
type HTTPServerConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// NewHTTPServer creates a new HTTP ingress server
func NewHTTPServer(cfg HTTPServerConfig, logger *slog.Logger,
	appConfig *config.Config, client *stt.Client, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		client:    client,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return h
}

// Handler returns the configured HTTP handler
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Transcription ingress
	mux.HandleFunc("/api/v1/transcribe", h.withMetrics("/api/v1/transcribe", h.handleTranscribe))

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := strconv.Itoa(ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP ingress server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP ingress server...")

	return h.server.Shutdown(ctx)
}

// transcribeResponse is the JSON reply for a successful transcription
type transcribeResponse struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// handleTranscribe implements the POST /api/v1/transcribe endpoint.
// The request body is raw PCM in the configured capture profile; sample_rate,
// channels, and language may be overridden via query parameters.
func (h *HTTPServer) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	meta, err := h.requestMetadata(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	// Collect the upload into the accumulation buffer chunk by chunk,
	// the same way capture audio arrives from the host platform.
	pcmBuf := audio.NewBuffer(0)
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			pcmBuf.Append(chunk[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read audio body: %w", readErr))
			return
		}
	}

	pcm := pcmBuf.Bytes()
	durationSeconds := audio.PCMDuration(len(pcm), meta.SampleRate, meta.Channels, meta.BitsPerSample)

	h.logger.Debug("Processing transcription request",
		slog.Int("pcm_bytes", len(pcm)),
		slog.Int("chunks", pcmBuf.Chunks()),
		slog.Float64("duration_seconds", durationSeconds),
		slog.String("language", meta.Language),
	)

	startTime := time.Now()
	h.metrics.RecordTranscriptionRequest()

	text, err := h.client.Transcribe(r.Context(), pcm, meta)
	if err != nil {
		h.metrics.RecordTranscriptionFailure(time.Since(startTime).Seconds())

		status := http.StatusBadGateway
		var formatErr *stt.UnsupportedFormatError
		switch {
		case errors.As(err, &formatErr), errors.Is(err, audio.ErrEmptyAudio):
			h.metrics.RecordFrameError()
			status = http.StatusBadRequest
		}

		h.logger.Warn("Transcription failed",
			slog.String("error", err.Error()),
			slog.Int("pcm_bytes", len(pcm)),
		)
		h.writeError(w, status, err)
		return
	}

	h.metrics.RecordFrameEncoded(audio.HeaderSize+len(pcm), durationSeconds)
	h.metrics.RecordTranscriptionSuccess(time.Since(startTime).Seconds())

	h.logger.Debug("Transcription succeeded",
		slog.Int("text_length", len(text)),
		slog.Duration("elapsed", time.Since(startTime)),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transcribeResponse{
		Text:            text,
		DurationSeconds: durationSeconds,
	})
}

// requestMetadata builds the capture metadata from config defaults and
// query-parameter overrides
func (h *HTTPServer) requestMetadata(r *http.Request) (stt.AudioMetadata, error) {
	meta := stt.AudioMetadata{
		Format:        stt.FormatWAV,
		Codec:         stt.CodecPCM,
		SampleRate:    h.config.Audio.SampleRate,
		Channels:      h.config.Audio.Channels,
		BitsPerSample: h.config.Audio.BitDepth,
		Language:      h.config.STT.Language,
	}

	query := r.URL.Query()

	if v := query.Get("sample_rate"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return meta, fmt.Errorf("invalid sample_rate %q", v)
		}
		meta.SampleRate = rate
	}

	if v := query.Get("channels"); v != "" {
		channels, err := strconv.Atoi(v)
		if err != nil {
			return meta, fmt.Errorf("invalid channels %q", v)
		}
		meta.Channels = channels
	}

	if v := query.Get("language"); v != "" {
		meta.Language = v
	}

	return meta, nil
}

// writeError sends a JSON error response with the diagnostic text
func (h *HTTPServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	clientStats := h.client.GetStats()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "openai-stt-ha",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"transcription": map[string]interface{}{
				"status":         "running",
				"endpoint":       h.config.STT.APIURL,
				"total_requests": clientStats.TotalRequests,
				"success_rate":   clientStats.SuccessRate,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := map[string]interface{}{
		"uptime":        time.Since(h.startTime).String(),
		"timestamp":     time.Now().UTC(),
		"transcription": h.client.GetStats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"stt": map[string]interface{}{
			"api_url":  h.config.STT.APIURL,
			"timeout":  h.config.STT.Timeout,
			"language": h.config.STT.Language,
		},
		"audio": map[string]interface{}{
			"sample_rate": h.config.Audio.SampleRate,
			"channels":    h.config.Audio.Channels,
			"bit_depth":   h.config.Audio.BitDepth,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Local Whisper STT Bridge",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"POST /api/v1/transcribe": "Transcribe raw PCM audio (body: 16-bit LE PCM; query: sample_rate, channels, language)",
			"GET /":                   "API documentation",
			"GET /health":             "Service health check",
			"GET /stats":              "Service statistics",
			"GET /config":             "Service configuration",
			"GET /metrics":            "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
