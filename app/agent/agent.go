// Package agent generates answers through an LM Studio server's
// OpenAI-compatible chat completions API.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

const systemMessage = `You are a helpful financial assistant analyzing expense data.
Use the provided context to answer questions about income, expenses, and spending patterns.
Be concise and specific with numbers. If asked about comparisons, calculate differences and percentages.`

// Generator produces completions and reports upstream reachability.
type Generator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
	CheckConnection(ctx context.Context) bool
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type LMStudio struct {
	baseURL string
	client  *http.Client
}

func NewLMStudio(baseURL string) *LMStudio {
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	return &LMStudio{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// GenerateAnswer sends the retrieved context plus the question as a fixed
// two-message exchange and returns the completion text. A failed call
// surfaces immediately; there are no retries.
func (l *LMStudio) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	reqBody, err := json.Marshal(completionRequest{
		Messages: []Message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)},
		},
		Temperature: 0.7,
		MaxTokens:   500,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	if count, err := countTokens(reqBody); err == nil {
		log.Printf("[AGENT] prompt size: %d tokens, %d bytes", count, len(reqBody))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, "POST", l.baseURL+"/v1/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("LM Studio error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LM Studio error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("LM Studio error: decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("LM Studio error: response contains no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// CheckConnection probes the model-listing route with a short timeout.
// Failures come back as false, never as an error, so health checks stay
// non-throwing.
func (l *LMStudio) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", l.baseURL+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func countTokens(data []byte) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(string(data), nil, nil)), nil
}
