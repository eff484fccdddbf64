package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"interview-backend/internal/llm"
)

const (
	defaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

// contentGenerator is the subset of genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" || !strings.HasPrefix(model, "gemini") {
		model = defaultModel
	}
	return &Client{models: client.Models, model: model}, nil
}

// Complete sends the prompt to Gemini and joins the textual parts of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", llm.ErrNotConfigured
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("gemini: %w", llm.ErrEmptyCompletion)
	}
	return output, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// classify maps genai API errors onto the provider-neutral llm errors.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return fmt.Errorf("gemini generate content: %w", err)
		}
		apiErr = *apiErrPtr
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("gemini %s: %w", apiErr.Status, llm.ErrRateLimited)
	}
	// Gemini reports transient overload as 500 as well as 503.
	code := apiErr.Code
	if code == http.StatusInternalServerError {
		code = http.StatusServiceUnavailable
	}
	return &llm.StatusError{Provider: providerName, StatusCode: code, Body: apiErr.Message}
}

var _ llm.Client = (*Client)(nil)
