package providers

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Responses are capped short so they stay digestible for a young child.
const llmMaxTokens = 300

type OpenAILLM struct {
	client *openai.Client
	model  string
}

func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	return &OpenAILLM{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAILLM) Name() string { return "openai" }

func (p *OpenAILLM) Chat(ctx context.Context, messages []LLMMessage, systemPrompt string) (LLMResponse, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    chatMessages,
		MaxTokens:   llmMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("openai chat: no choices returned")
	}

	return LLMResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		CostUSD:      tokenCost(openAIPricing, p.model, defaultOpenAIPriceModel, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Model:        p.model,
	}, nil
}
