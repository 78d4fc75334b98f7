// Package safety screens child input and generated output against a fixed
// blocklist. It is deterministic on purpose: no model call is ever on the
// path between a child and unsafe content.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Topics that must never appear in child-facing content.
var defaultBlockedTopics = []string{
	"violence", "weapon", "gun", "knife", "kill", "murder", "blood",
	"drug", "alcohol", "cigarette", "smoke", "beer", "wine",
	"sex", "naked", "porn",
	"suicide", "self-harm", "cut myself",
	"hate", "racist", "slur",
	"address", "phone number", "credit card", "password", "social security",
}

// Patterns for personal-information extraction attempts.
var defaultPIIPatterns = []string{
	`what(?:'s| is) your (?:address|phone|school|last name|full name)`,
	`where do you live`,
	`tell me your (?:address|number|school)`,
}

var defaultRedirects = map[string]string{
	"zh": "嗯，我們來聊點別的好嗎？你今天做了什麼好玩的事呢？",
	"en": "Hmm, let's talk about something else! What fun things did you do today?",
	"es": "Hmm, hablemos de otra cosa. ¿Qué cosas divertidas hiciste hoy?",
}

type Filter struct {
	blocked     []string
	piiPatterns []*regexp.Regexp
	wordRes     []*regexp.Regexp
	redirects   map[string]string
}

// NewFilter builds the filter from the built-in lists. The lists are
// compiled once here and never mutated afterwards.
func NewFilter() *Filter {
	f := &Filter{
		blocked:   defaultBlockedTopics,
		redirects: defaultRedirects,
	}
	for _, pattern := range defaultPIIPatterns {
		f.piiPatterns = append(f.piiPatterns, regexp.MustCompile(pattern))
	}
	for _, word := range defaultBlockedTopics {
		f.wordRes = append(f.wordRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check reports whether text is safe for a child, and if not, which rule
// fired. The first matching rule wins.
func (f *Filter) Check(text string) (bool, string) {
	lower := strings.ToLower(text)

	for _, word := range f.blocked {
		if strings.Contains(lower, word) {
			return false, fmt.Sprintf("blocked_topic:%s", word)
		}
	}
	for _, pattern := range f.piiPatterns {
		if pattern.MatchString(lower) {
			return false, "pii_extraction_attempt"
		}
	}
	return true, ""
}

// Sanitize redacts whole-word blocklist matches from generated output. The
// system prompt should prevent such content upstream; this pass is the last
// line of defense and runs on every generated response.
func (f *Filter) Sanitize(text string) string {
	for _, re := range f.wordRes {
		text = re.ReplaceAllString(text, "...")
	}
	return text
}

// Redirect returns the fixed change-of-subject sentence for a language,
// falling back to English.
func (f *Filter) Redirect(language string) string {
	if redirect, ok := f.redirects[language]; ok {
		return redirect
	}
	return f.redirects["en"]
}
