package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileFor(t *testing.T) {
	assert.Equal(t, "Hoppy Rabbit", ProfileFor("rabbit").DisplayName("en"))
	assert.Equal(t, "小貓咪咪", ProfileFor("cat").DisplayName("zh"))

	// Unknown characters and languages fall back to the bear and English.
	assert.Equal(t, "Bobby Bear", ProfileFor("dragon").DisplayName("en"))
	assert.Equal(t, "Bobby Bear", ProfileFor("bear").DisplayName("fr"))
}

func TestSwitchGreeting(t *testing.T) {
	assert.Equal(t, "好的！我們現在說中文吧，Mei！", SwitchGreeting("zh", "Mei"))
	assert.Equal(t, "Okay! Let's speak English now, Mei!", SwitchGreeting("en", "Mei"))
	assert.Equal(t, "Okay! Let's speak English now, Mei!", SwitchGreeting("fr", "Mei"))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt("rabbit", "Mei", 5, "zh", []string{"en", "es"})

	assert.Contains(t, prompt, "小兔跳跳")
	assert.Contains(t, prompt, "5-year-old child named Mei")
	assert.Contains(t, prompt, "Speak primarily in Chinese")
	assert.Contains(t, prompt, "English, Spanish")
	assert.Contains(t, prompt, "NEVER ask for or discuss personal information")
}
