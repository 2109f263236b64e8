package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanjeevdwivedi/openai-stt-ha/internal/audio"
)

const (
	// DefaultAPIURL is the base URL of the local ASR service.
	DefaultAPIURL = "http://sanjeev-debian-llm-vm:9000"

	// DefaultTimeout bounds a single transcription request; a timed-out
	// request resolves to a failure and is not retried.
	DefaultTimeout = 30 * time.Second

	// asrPath is the transcription endpoint on the ASR service.
	asrPath = "/asr"

	// audioFieldName is the multipart form field carrying the WAV file.
	audioFieldName = "audio_file"

	// audioFileName is the filename reported for the uploaded WAV buffer.
	audioFileName = "recording.wav"

	userAgent = "openai-stt-ha/1.0"
)

// Client issues transcription requests to the local ASR service
type Client struct {
	config     Config
	httpClient *http.Client

	// Statistics
	totalRequests   uint64
	successRequests uint64
	failedRequests  uint64
	avgResponseTime time.Duration

	mu sync.RWMutex
}

// Config contains transcription client configuration
type Config struct {
	APIURL  string        // base URL, defaults to DefaultAPIURL
	Timeout time.Duration // per-request timeout, defaults to DefaultTimeout
}

// ClientStats represents client statistics
type ClientStats struct {
	TotalRequests   uint64        `json:"total_requests"`
	SuccessRequests uint64        `json:"success_requests"`
	FailedRequests  uint64        `json:"failed_requests"`
	SuccessRate     float64       `json:"success_rate"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
}

// NewClient creates a new transcription client
func NewClient(config Config) (*Client, error) {
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}

	if _, err := url.Parse(config.APIURL); err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", config.APIURL, err)
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// Transcribe validates the capture metadata, frames the raw PCM buffer into
// WAV, and submits it for transcription. It returns the transcript text or a
// typed error: *UnsupportedFormatError for profile mismatches,
// audio.ErrEmptyAudio for empty input, *RequestError for transport or
// service failures, ErrEmptyTranscript for a blank 200 response.
func (c *Client) Transcribe(ctx context.Context, pcm []byte, meta AudioMetadata) (string, error) {
	if err := meta.Validate(); err != nil {
		return "", err
	}

	wavData, err := audio.WrapPCM(pcm, meta.SampleRate, meta.Channels, meta.BitsPerSample)
	if err != nil {
		return "", err
	}

	return c.TranscribeWAV(ctx, wavData, meta.Language)
}

// TranscribeWAV submits an already framed WAV buffer for transcription.
// Exactly one request is issued: there is no automatic retry on failure.
func (c *Client) TranscribeWAV(ctx context.Context, wavData []byte, language string) (string, error) {
	startTime := time.Now()
	c.incrementTotalRequests()

	text, err := c.doRequest(ctx, wavData, language)
	if err != nil {
		c.incrementFailedRequests()
		return "", err
	}

	c.incrementSuccessRequests()
	c.updateAvgResponseTime(time.Since(startTime))

	return text, nil
}

// doRequest performs a single HTTP request to the ASR service
func (c *Client) doRequest(ctx context.Context, wavData []byte, language string) (string, error) {
	body, contentType, err := c.createMultipartRequest(wavData)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart request: %w", err)
	}

	endpoint, err := c.requestURL(language)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "text/plain")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &RequestError{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Detail: err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{StatusCode: resp.StatusCode, Detail: string(respBody)}
	}

	// On success the entire body is the transcript, not JSON
	text := strings.TrimSpace(string(respBody))
	if text == "" {
		return "", ErrEmptyTranscript
	}

	return text, nil
}

// requestURL builds the /asr endpoint URL with its query parameters
func (c *Client) requestURL(language string) (string, error) {
	u, err := url.Parse(c.config.APIURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", c.config.APIURL, err)
	}

	u.Path = strings.TrimRight(u.Path, "/") + asrPath

	params := url.Values{}
	params.Set("encode", "true")
	params.Set("task", "transcribe")
	params.Set("output", "txt")
	if language != "" {
		params.Set("language", language)
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// createMultipartRequest creates a multipart/form-data request body with the
// WAV buffer as the audio file part
func (c *Client) createMultipartRequest(wavData []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, audioFieldName, audioFileName))
	header.Set("Content-Type", "audio/wav")

	fileWriter, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := fileWriter.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// Statistics methods
func (c *Client) incrementTotalRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
}

func (c *Client) incrementSuccessRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successRequests++
}

func (c *Client) incrementFailedRequests() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedRequests++
}

func (c *Client) updateAvgResponseTime(responseTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Simple moving average
	if c.avgResponseTime == 0 {
		c.avgResponseTime = responseTime
	} else {
		c.avgResponseTime = (c.avgResponseTime + responseTime) / 2
	}
}

// GetStats returns current client statistics
func (c *Client) GetStats() ClientStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	successRate := float64(0)
	if c.totalRequests > 0 {
		successRate = float64(c.successRequests) / float64(c.totalRequests) * 100
	}

	return ClientStats{
		TotalRequests:   c.totalRequests,
		SuccessRequests: c.successRequests,
		FailedRequests:  c.failedRequests,
		SuccessRate:     successRate,
		AvgResponseTime: c.avgResponseTime,
	}
}
