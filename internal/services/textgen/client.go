package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipforge/internal/services"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 60 * time.Second
	maxPromptChars     = 6000
)

// Config captures the runtime settings required to talk to the text provider.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client wraps a chat-completion API to produce per-clip titles,
// descriptions, and hashtags from transcript text.
type Client struct {
	baseURL *url.URL
	apiKey  string
	model   string
	http    *http.Client
}

// New constructs a text-generation client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("textgen: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("textgen: parse base url: %w", err)
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
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		http:    client,
	}, nil
}

// Texts is the generated metadata for one clip.
type Texts struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You write social media metadata for short vertical video clips. " +
	"Respond with a JSON object containing \"title\" (under 60 characters), " +
	"\"description\" (one or two sentences), and \"hashtags\" (3 to 5 strings without the # prefix)."

// Generate produces title, description, and hashtags for a clip transcript.
func (c *Client) Generate(ctx context.Context, transcript string) (Texts, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Texts{}, services.Wrap(services.ErrValidation, "textgen", "generate", "empty transcript", nil)
	}
	if len(transcript) > maxPromptChars {
		transcript = transcript[:maxPromptChars]
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Clip transcript:\n" + transcript},
		},
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Texts{}, fmt.Errorf("textgen: encode request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("chat", "completions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return Texts{}, fmt.Errorf("textgen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Texts{}, services.Wrap(services.ErrTransient, "textgen", "generate", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(detail)))
		marker := services.ErrExternalTool
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			marker = services.ErrTransient
		}
		return Texts{}, services.Wrap(marker, "textgen", "generate", message, nil)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Texts{}, services.Wrap(services.ErrExternalTool, "textgen", "generate", "decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return Texts{}, services.Wrap(services.ErrExternalTool, "textgen", "generate", "provider returned no choices", nil)
	}

	var texts Texts
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &texts); err != nil {
		return Texts{}, services.Wrap(services.ErrExternalTool, "textgen", "generate",
			"provider returned non-JSON content", err)
	}
	if strings.TrimSpace(texts.Title) == "" {
		return Texts{}, services.Wrap(services.ErrExternalTool, "textgen", "generate", "provider returned empty title", nil)
	}
	return texts, nil
}
