package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text string
		want string
	}{
		{"this is so fun, I love it, yay", "happy"},
		{"wow that is amazing and cool", "excited"},
		{"why does the moon follow us", "curious"},
		{"I miss my grandma and I want to cry", "sad"},
		{"it's too hard, I don't know how", "frustrated"},
		{"太難了 我不會", "frustrated"},
		{"我做到了 看", "proud"},
		{"the sky is blue", "neutral"},
		{"", "neutral"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Detect(tt.text), tt.text)
	}
}

func TestDetectTieGoesToFirstLabel(t *testing.T) {
	c := NewClassifier()

	// One keyword each from happy and sad; declaration order breaks the tie.
	assert.Equal(t, "happy", c.Detect("fun but I also cry"))
}

func TestDetectIsDeterministic(t *testing.T) {
	c := NewClassifier()

	const text = "wow why can't I do it"
	first := c.Detect(text)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, c.Detect(text))
	}
}

func TestCharacterEmotionFor(t *testing.T) {
	c := NewClassifier()

	tests := map[string]string{
		"happy":      "happy",
		"excited":    "excited",
		"curious":    "curious",
		"sad":        "empathetic",
		"frustrated": "encouraging",
		"proud":      "happy",
		"neutral":    "curious",
		"bogus":      "curious",
	}
	for child, want := range tests {
		assert.Equal(t, want, c.CharacterEmotionFor(child), child)
	}
}
