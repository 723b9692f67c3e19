// Package ai talks to a Gemini style generateContent API for content
// moderation and deed translation.
package ai

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
)

var ErrNotConfigured = errors.New("ai: api key is not configured")

type GeminiRequest struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

type GeminiCandidate struct {
	Content GeminiContent `json:"content"`
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements Moderator and Translator.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

// generate sends one prompt and decodes the JSON object the model answers with into out.
func (c *Client) generate(ctx context.Context, prompt string, out interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(GeminiRequest{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	// The key goes in a header. Transport errors quote the URL.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model returned status %d", resp.StatusCode)
	}

	var gr GeminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return errors.New("model returned no candidates")
	}

	text := stripFences(gr.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode model answer: %w", err)
	}
	return nil
}

// stripFences removes the ```json fences models like to wrap answers in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
