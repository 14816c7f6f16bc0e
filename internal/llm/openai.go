package llm

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"
	openaiTimeout = 120 * time.Second

	// Matches the sampling temperature the service has always used.
	openaiTemperature = 0.7
)

// OpenAI generates text against the hosted chat completions API.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewOpenAI creates a provider authenticating with apiKey.
func NewOpenAI(apiKey, model string, log *slog.Logger) *OpenAI {
	return &OpenAI{
		baseURL: openaiBaseURL,
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: openaiTimeout,
		},
		logger: log,
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string {
	return "openai"
}

type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type openaiResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	payload := openaiRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: openaiTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	o.logger.Debug("openai request", "model", o.model, "max_tokens", req.MaxTokens)

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

	var parsed openaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", failed(o.Name(), false, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", failed(o.Name(), false, fmt.Errorf("empty choices in response"))
	}

	o.logger.Debug("openai response", "chars", len(parsed.Choices[0].Message.Content))
	return parsed.Choices[0].Message.Content, nil
}
