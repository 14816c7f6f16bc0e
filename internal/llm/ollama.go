package llm

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Local inference can be slow on modest hardware.
const ollamaTimeout = 180 * time.Second

// Ollama generates text against a local Ollama instance via its chat API.
type Ollama struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewOllama creates a provider talking to the Ollama server at baseURL.
func NewOllama(baseURL, model string, log *slog.Logger) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http: &http.Client{
			Timeout: ollamaTimeout,
		},
		logger: log,
	}
}

// Name implements Provider.
func (o *Ollama) Name() string {
	return "ollama"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict"`
}

type ollamaResponse struct {
	Message chatMessage `json:"message"`
}

// Generate implements Provider.
func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	payload := ollamaRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:  false,
		Options: ollamaOptions{NumPredict: req.MaxTokens},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	o.logger.Debug("ollama request", "model", o.model, "max_tokens", req.MaxTokens)

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", failed(o.Name(), true, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failed(o.Name(), true, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		return "", failed(o.Name(), statusRetryable(resp.StatusCode), err)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("decode response: %w", err))
	}

	o.logger.Debug("ollama response", "chars", len(parsed.Message.Content))
	return parsed.Message.Content, nil
}
