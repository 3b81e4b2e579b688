package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient calls a local Ollama daemon's /api/chat endpoint. Ollama
// shares the system/user/assistant vocabulary, so turns map directly.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates a client for a local Ollama daemon.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Generate implements Provider.
func (c *OllamaClient) Generate(ctx context.Context, turns []Turn, params Params) (string, error) {
	req := ollamaRequest{Model: c.model}
	for _, t := range turns {
		req.Messages = append(req.Messages, ollamaMessage{Role: string(t.Role), Content: t.Content})
	}
	req.Options.Temperature = params.Temperature
	req.Options.NumPredict = params.MaxTokens

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", unavailable("ollama", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("ollama", err)
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", unavailable("ollama", fmt.Errorf("api error [%d]: %s", resp.StatusCode, string(respBody)))
	}
	if resp.StatusCode != http.StatusOK || result.Error != "" {
		return "", unavailable("ollama", fmt.Errorf("api error [%d]: %s", resp.StatusCode, result.Error))
	}

	return result.Message.Content, nil
}
