package providers

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Default voice per language when the caller gives no override.
var ttsVoiceMap = map[string]openai.SpeechVoice{
	"zh": openai.VoiceNova,
	"en": openai.VoiceShimmer,
	"es": openai.VoiceAlloy,
}

type OpenAITTS struct {
	client *openai.Client
	model  string
}

func NewOpenAITTS(apiKey, model string) *OpenAITTS {
	return &OpenAITTS{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAITTS) Name() string { return "openai_tts" }

func (p *OpenAITTS) Synthesize(ctx context.Context, text, language, voice string) (TTSResponse, error) {
	speechVoice := openai.SpeechVoice(voice)
	if voice == "" {
		var ok bool
		if speechVoice, ok = ttsVoiceMap[language]; !ok {
			speechVoice = openai.VoiceShimmer
		}
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.model),
		Input:          text,
		Voice:          speechVoice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          0.9, // slightly slower for child comprehension
	})
	if err != nil {
		return TTSResponse{}, fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return TTSResponse{}, fmt.Errorf("read audio: %w", err)
	}

	return TTSResponse{
		AudioBytes:      audio,
		DurationSeconds: speechSeconds(text),
		CostUSD:         speechCost(text),
		Format:          "mp3",
	}, nil
}
