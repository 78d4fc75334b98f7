package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenCost(t *testing.T) {
	cost := tokenCost(openAIPricing, "gpt-4o", defaultOpenAIPriceModel, 1000, 500)
	assert.InDelta(t, (1000*2.50+500*10.00)/1_000_000, cost, 1e-12)

	cost = tokenCost(anthropicPricing, "claude-haiku-4-5-20251001", defaultAnthropicPriceModel, 200, 300)
	assert.InDelta(t, (200*0.80+300*4.00)/1_000_000, cost, 1e-12)
}

func TestTokenCostUnknownModelUsesFallback(t *testing.T) {
	known := tokenCost(openAIPricing, "gpt-4o-mini", defaultOpenAIPriceModel, 1000, 1000)
	unknown := tokenCost(openAIPricing, "gpt-99", defaultOpenAIPriceModel, 1000, 1000)
	assert.Equal(t, known, unknown)
}

func TestTokenCostZeroTokens(t *testing.T) {
	assert.Zero(t, tokenCost(openAIPricing, "gpt-4o", defaultOpenAIPriceModel, 0, 0))
}

func TestSpeechCostCountsRunes(t *testing.T) {
	// 6 runes, 18 UTF-8 bytes. Billing follows characters.
	assert.InDelta(t, 6*ttsCostPerChar, speechCost("你好呀小朋友"), 1e-12)
	assert.InDelta(t, 5*ttsCostPerChar, speechCost("hello"), 1e-12)
}

func TestSpeechSeconds(t *testing.T) {
	assert.InDelta(t, 6.0/150.0, speechSeconds("你好呀小朋友"), 1e-12)
	assert.Zero(t, speechSeconds(""))
}
