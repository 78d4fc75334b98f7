package providers

import "unicode/utf8"

// Prices per one million tokens, input and output priced independently.
type modelPrice struct {
	Input  float64
	Output float64
}

var openAIPricing = map[string]modelPrice{
	"gpt-4o":      {Input: 2.50, Output: 10.00},
	"gpt-4o-mini": {Input: 0.15, Output: 0.60},
	"gpt-4-turbo": {Input: 10.00, Output: 30.00},
}

var anthropicPricing = map[string]modelPrice{
	"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
	"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
}

const (
	defaultOpenAIPriceModel    = "gpt-4o-mini"
	defaultAnthropicPriceModel = "claude-haiku-4-5-20251001"

	// Whisper is billed per minute of audio.
	whisperCostPerMinute = 0.006

	// OpenAI TTS is billed per character: $15.00 per 1M characters.
	ttsCostPerChar = 15.00 / 1_000_000
)

func tokenCost(pricing map[string]modelPrice, model, fallback string, inputTokens, outputTokens int) float64 {
	price, ok := pricing[model]
	if !ok {
		price = pricing[fallback]
	}
	return (float64(inputTokens)*price.Input + float64(outputTokens)*price.Output) / 1_000_000
}

// speechCost prices synthesized text. The vendor bills per character, not
// per byte, so multi-byte scripts count by rune.
func speechCost(text string) float64 {
	return ttsCostPerChar * float64(utf8.RuneCountInString(text))
}

// speechSeconds estimates playback length at roughly 150 characters per
// second of speech.
func speechSeconds(text string) float64 {
	return float64(utf8.RuneCountInString(text)) / 150.0
}
