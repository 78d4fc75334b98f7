// Package providers wraps the vendor APIs behind one small interface per
// modality. Adapters are constructed per call by the Resolver with whatever
// credential won the configuration lookup.
package providers

import "context"

// LLMMessage is one turn of dialogue history passed to a text generator.
type LLMMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

type LLMResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Model        string
}

type STTResponse struct {
	Text            string
	Language        string
	DurationSeconds float64
	CostUSD         float64
}

type TTSResponse struct {
	AudioBytes      []byte
	DurationSeconds float64
	CostUSD         float64
	Format          string
}

type ImageResponse struct {
	ImageURL string
	CostUSD  float64
}

type LLMProvider interface {
	Name() string
	Chat(ctx context.Context, messages []LLMMessage, systemPrompt string) (LLMResponse, error)
}

type STTProvider interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, language string) (STTResponse, error)
}

type TTSProvider interface {
	Name() string
	Synthesize(ctx context.Context, text, language, voice string) (TTSResponse, error)
}

type ImageProvider interface {
	Name() string
	Generate(ctx context.Context, prompt, style string) (ImageResponse, error)
}
