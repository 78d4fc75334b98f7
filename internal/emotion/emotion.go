// Package emotion maps free text to a discrete child-emotion label and picks
// the matching character reaction. Keyword scoring only, no model calls.
package emotion

import "strings"

type keywordSet struct {
	label    string
	keywords []string
}

// Scoring order doubles as the tie-break order: the first declared label
// wins a tied score.
var keywordSets = []keywordSet{
	{"happy", []string{"happy", "great", "awesome", "yay", "fun", "love", "hooray", "wonderful",
		"開心", "好棒", "太好了", "喜歡", "好玩"}},
	{"excited", []string{"excited", "wow", "amazing", "cool", "super",
		"好興奮", "哇", "太厲害了"}},
	{"curious", []string{"why", "how", "what", "wonder", "interesting", "tell me",
		"為什麼", "怎麼", "什麼", "好奇"}},
	{"sad", []string{"sad", "sorry", "miss", "cry", "hurt", "scared", "afraid",
		"難過", "想念", "哭", "害怕", "傷心"}},
	{"frustrated", []string{"can't", "don't know", "hard", "difficult", "wrong", "no",
		"不會", "不知道", "太難", "不要"}},
	{"proud", []string{"did it", "i know", "look", "made", "finished",
		"我會了", "看", "完成了", "做到了"}},
}

var characterEmotionFor = map[string]string{
	"happy":      "happy",
	"excited":    "excited",
	"curious":    "curious",
	"sad":        "empathetic",
	"frustrated": "encouraging",
	"proud":      "happy",
	"neutral":    "curious",
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Detect returns the label with the strictly highest keyword count, or
// "neutral" when nothing matches.
func (c *Classifier) Detect(text string) string {
	lower := strings.ToLower(text)

	best := "neutral"
	bestScore := 0
	for _, set := range keywordSets {
		score := 0
		for _, keyword := range set.keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = set.label
			bestScore = score
		}
	}
	return best
}

// CharacterEmotionFor maps the child's emotion to the emotion the character
// should show back. Unknown inputs land on "curious".
func (c *Classifier) CharacterEmotionFor(childEmotion string) string {
	if mapped, ok := characterEmotionFor[childEmotion]; ok {
		return mapped
	}
	return "curious"
}
