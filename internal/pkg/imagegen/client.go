// Package imagegen talks to the Together AI image-generation API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pixeldodo/pixeldodo/internal/pkg/env"
)

const (
	defaultBaseURL = "https://api.together.xyz"
	defaultModel   = "black-forest-labs/FLUX.1-schnell-Free"
	defaultTimeout = 60 * time.Second

	// The free FLUX endpoint accepts between 1 and 4 diffusion steps.
	generationSteps = 4
)

// ErrNoImageReturned is returned when the API answered 200 without image data.
var ErrNoImageReturned = errors.New("imagegen: api returned no image")

// Client is a minimal Together AI images client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint and key.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientFromEnv builds a client from TOGETHER_* environment variables.
func NewClientFromEnv() *Client {
	timeout := defaultTimeout
	if raw := env.GetEnv("TOGETHER_TIMEOUT_SECONDS", ""); raw != "" {
		var seconds int
		if _, err := fmt.Sscanf(raw, "%d", &seconds); err == nil && seconds > 0 {
			timeout = time.Duration(seconds) * time.Second
		}
	}
	return NewClient(
		env.GetEnv("TOGETHER_API_KEY", ""),
		env.GetEnv("TOGETHER_BASE_URL", defaultBaseURL),
		env.GetEnv("TOGETHER_MODEL", defaultModel),
		timeout,
	)
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateImage submits a prompt and returns the URL of the produced
// image. The request is bounded by the client timeout and the caller's
// context; a timed-out call surfaces as an error without side effects.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("imagegen: api key is not configured")
	}

	body, err := json.Marshal(generationRequest{
		Model:          c.model,
		Prompt:         prompt,
		Steps:          generationSteps,
		N:              1,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post together: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("together api status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("together api status %d", resp.StatusCode)
	}

	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", ErrNoImageReturned
	}
	return parsed.Data[0].URL, nil
}
