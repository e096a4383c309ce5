// Package gemini wraps the Google GenAI SDK for headline and summary
// generation.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.0-flash"

	maxAttempts    = 3
	retryBaseDelay = 2 * time.Second
)

type Options struct {
	APIKey string
	Model  string
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate runs the prompt against the configured model with a length
// band appended as prompt guidance. Transient API failures (rate
// limits, 5xx) get retried with a short backoff; everything else
// returns immediately.
func (c *Client) Generate(ctx context.Context, prompt string, minTokens, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("gemini client is not initialized")
	}

	full := withLengthGuidance(prompt, minTokens, maxTokens)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(attempt)):
			}
		}

		result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(full), nil)
		if err == nil {
			text, textErr := result.Text()
			if textErr != nil {
				return "", fmt.Errorf("get text from result: %w", textErr)
			}
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		if !isRetryable(err.Error()) {
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// withLengthGuidance phrases the token band as a word range, which the
// chat models follow far more reliably than raw token counts.
func withLengthGuidance(prompt string, minTokens, maxTokens int) string {
	if minTokens <= 0 || maxTokens <= 0 {
		return prompt
	}
	return fmt.Sprintf("%s\n\nKeep the response between %d and %d words.", prompt, minTokens, maxTokens)
}

func isRetryable(errStr string) bool {
	errLower := strings.ToLower(errStr)
	for _, marker := range []string{
		"429",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"500",
		"502",
		"503",
		"504",
		"unavailable",
		"overloaded",
	} {
		if strings.Contains(errLower, marker) {
			return true
		}
	}
	return false
}
