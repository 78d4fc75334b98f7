package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicBaseURL    = "https://api.anthropic.com"
	anthropicAPIVersion = "2023-06-01"
)

type AnthropicLLM struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewAnthropicLLM(apiKey, model string) *AnthropicLLM {
	return &AnthropicLLM{
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *AnthropicLLM) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicLLM) Chat(ctx context.Context, messages []LLMMessage, systemPrompt string) (LLMResponse, error) {
	req := anthropicRequest{
		Model:     p.model,
		MaxTokens: llmMaxTokens,
		System:    systemPrompt,
		Messages:  make([]anthropicMessage, 0, len(messages)),
	}
	for _, msg := range messages {
		role := "assistant"
		if msg.Role == "user" {
			role = "user"
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: role, Content: msg.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("anthropic chat: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("read response: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return LLMResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if parsed.Error != nil {
			return LLMResponse{}, fmt.Errorf("anthropic chat: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return LLMResponse{}, fmt.Errorf("anthropic chat: status %d", resp.StatusCode)
	}

	text := ""
	if len(parsed.Content) > 0 {
		text = parsed.Content[0].Text
	}

	return LLMResponse{
		Text:         text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		CostUSD:      tokenCost(anthropicPricing, p.model, defaultAnthropicPriceModel, parsed.Usage.InputTokens, parsed.Usage.OutputTokens),
		Model:        p.model,
	}, nil
}
