package providers

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type WhisperSTT struct {
	client *openai.Client
	model  string
}

func NewWhisperSTT(apiKey, model string) *WhisperSTT {
	return &WhisperSTT{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *WhisperSTT) Name() string { return "openai_whisper" }

func (p *WhisperSTT) Transcribe(ctx context.Context, audio []byte, language string) (STTResponse, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio.webm",
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
	})
	if err != nil {
		return STTResponse{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	detected := resp.Language
	if detected == "" {
		detected = language
	}

	return STTResponse{
		Text:            resp.Text,
		Language:        detected,
		DurationSeconds: resp.Duration,
		CostUSD:         whisperCostPerMinute * resp.Duration / 60,
	}, nil
}
