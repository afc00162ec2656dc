package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/jobdata"
	"clipforge/internal/services"
)

const (
	defaultModel       = "whisper-1"
	defaultHTTPTimeout = 5 * time.Minute
)

// Config describes the transcription provider client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Language   string
	HTTPClient *http.Client
}

// Client wraps the speech-to-text provider's REST API. It uploads an audio
// file and returns timed transcript segments.
type Client struct {
	baseURL  *url.URL
	apiKey   string
	model    string
	language string
	http     *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("transcriber: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("transcriber: parse base url: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    model,
		language: strings.TrimSpace(cfg.Language),
		http:     client,
	}, nil
}

type transcriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type transcriptionResponse struct {
	Segments []transcriptionSegment `json:"segments"`
	Text     string                 `json:"text"`
}

// Transcribe uploads the audio file and returns its segments ordered by
// start time. Rate-limit and server errors surface as transient so the
// pipeline retries them.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]jobdata.Segment, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcriber", "open audio", audioPath, err)
	}
	defer file.Close()

	body, contentType, err := c.buildUpload(file, filepath.Base(audioPath))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcriber", "build upload", "", err)
	}

	endpoint := c.baseURL.JoinPath("audio", "transcriptions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("transcriber: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "transcriber", "transcribe", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(detail)))
		marker := services.ErrExternalTool
		if retryableStatus(resp.StatusCode) {
			marker = services.ErrTransient
		}
		return nil, services.Wrap(marker, "transcriber", "transcribe", message, nil)
	}

	var payload transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcriber", "transcribe", "decode response", err)
	}

	segments := make([]jobdata.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, jobdata.Segment{Start: seg.Start, End: seg.End, Text: text})
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "transcriber", "transcribe", "provider returned no segments", nil)
	}
	return segments, nil
}

func (c *Client) buildUpload(file io.Reader, filename string) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return nil, "", err
	}
	if c.language != "" {
		if err := writer.WriteField("language", c.language); err != nil {
			return nil, "", err
		}
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return code >= 500
	}
}
