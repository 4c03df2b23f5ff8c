// Package vision talks to an OpenAI-compatible chat-completions endpoint
// to read handwritten names from rendered form pages.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/docscan/form-renamer/internal/config"
	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
)

// Client handles communication with the vision API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	retry      RetryConfig
	httpClient *http.Client
	logger     *observability.Logger
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image)
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an image URL in the message
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// Newer reasoning models reject max_tokens and require this field
	MaxCompletionTokens int `json:"max_completion_tokens"`
}

// Response represents the API response structure
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message inside a choice
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a new vision client
func NewClient(cfg config.VisionConfig, logger *observability.Logger) *Client {
	if logger == nil {
		logger = observability.Nop()
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	return &Client{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		retry:     retry,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// Complete sends one page image with an instruction prompt and returns the
// model's text reply. One request per document; replies are never cached.
func (c *Client) Complete(ctx context.Context, image *domain.PageImage, prompt string) (string, error) {
	if image == nil || len(image.Data) == 0 {
		return "", domain.ValidationError("page image is empty", nil)
	}

	body, err := json.Marshal(c.buildRequest(image, prompt))
	if err != nil {
		return "", domain.APIError("failed to marshal request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		// Clone the request body for each retry
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	return parseResponse(resp.Body)
}

// buildRequest constructs the API request with the image
func (c *Client) buildRequest(image *domain.PageImage, prompt string) *Request {
	encoded := base64.StdEncoding.EncodeToString(image.Data)
	imageURL := "data:image/" + image.Format + ";base64," + encoded

	msg := Message{
		Role: "user",
		Content: []ContentPart{
			{
				Type: "text",
				Text: prompt,
			},
			{
				Type: "image_url",
				ImageURL: &ImageURL{
					URL: imageURL,
				},
			},
		},
	}

	return &Request{
		Model:               c.model,
		Messages:            []Message{msg},
		MaxCompletionTokens: c.maxTokens,
	}
}

// parseResponse extracts the assistant text from a successful response
func parseResponse(body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", domain.APIError("failed to read response body", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", domain.APIError("failed to parse response body", err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.APIError("response contains no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// statusError maps a non-200 response onto the error taxonomy
func statusError(resp *http.Response) error {
	detail := readErrorDetail(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.AuthError(fmt.Sprintf("authentication rejected (status %d): %s", resp.StatusCode, detail), nil)
	case http.StatusTooManyRequests:
		return domain.RateLimitError(fmt.Sprintf("rate limited: %s", detail), nil)
	default:
		return domain.APIError(fmt.Sprintf("API returned status %d: %s", resp.StatusCode, detail), nil)
	}
}

// transportError maps a failed round trip onto the error taxonomy
func transportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NetworkError("request cancelled or timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NetworkError("request timed out", err)
	}

	// Retries exhausted on rate limits surface as such, not as network errors
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}

	return domain.NetworkError("request failed", err)
}

// readErrorDetail pulls the error message out of an API error body, falling
// back to a raw snippet when the body is not the documented shape
func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no detail"
	}

	var parsed apiErrorBody
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}

	return strings.TrimSpace(string(data))
}
