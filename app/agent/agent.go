// Package agent talks to the hosted completion API (Groq, OpenAI-compatible
// chat completions) and owns the retry policy around it.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel   = "llama-3.1-8b-instant"

	// Low temperature keeps the analysis consistent between runs.
	temperature = 0.3
	maxTokens   = 1000
)

// ErrUnavailable marks a transient server-side failure of the completion
// API. It is the only error kind the retry loop is allowed to retry.
var ErrUnavailable = errors.New("completion service unavailable")

type TransientError struct {
	Status int
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("completion API returned status %d", e.Status)
}

func (e *TransientError) Unwrap() error {
	return ErrUnavailable
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CompletionClient is what the query pipeline depends on.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient builds a Groq client. The endpoint and model can be overridden
// with LLM_URL and LLM_MODEL.
func NewClient(apiKey string) *Client {
	baseURL := os.Getenv("LLM_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Complete sends the fixed two-message conversation and returns the
// generated text. A 429 or 5xx status comes back as a *TransientError so
// the retry policy can tell it apart from everything else.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	defer func() {
		fmt.Printf("LLM answer took %v\n", time.Since(start))
	}()

	reqBody, err := json.Marshal(ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	if count, err := CountTokens(reqBody); err == nil {
		fmt.Println("Size of prompt with system in tokens:", count)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return "", &TransientError{Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
			return "", fmt.Errorf("completion API error: %s", e.Error.Message)
		}
		return "", fmt.Errorf("completion API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("completion API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// CountTokens approximates prompt size with the cl100k encoding; exact
// enough for logging and budget checks across llama-family models.
func CountTokens(data []byte) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	tokens := enc.Encode(string(data), nil, nil)
	return len(tokens), nil
}
