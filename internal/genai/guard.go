package genai

import (
	"regexp"
	"strings"
)

// injectionPatterns are phrases commonly used to override a system prompt,
// in English and Indonesian.
var injectionPatterns = []string{
	"system prompt",
	"you are no longer",
	"you are now",
	"ignore previous",
	"ignore all previous",
	"ignore your instructions",
	"disregard previous",
	"new instructions",
	"system:",
	"[system",
	"<system",
	"assistant:",
	"[assistant",
	"forget everything",
	"jailbreak",
	"developer mode",
	"pretend to be",
	"abaikan instruksi",
	"abaikan semua instruksi",
	"lupakan instruksi",
	"kamu sekarang adalah",
	"berpura-pura menjadi",
	"aturan baru",
}

var (
	roleMarker = regexp.MustCompile(`(?i)</?\s*(system|assistant)\s*>|\[(system|assistant)\]`)
	separator  = regexp.MustCompile(`#{3,}|-{3,}|={3,}`)
	spaces     = regexp.MustCompile(`[ \t]{2,}`)
)

// DetectInjection reports whether text contains a known prompt override phrase.
func DetectInjection(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range injectionPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// SanitizeQuestion strips role markers and separator runs from a user
// question before it is embedded in a prompt. The second result reports
// whether an override attempt was detected in the original text.
func SanitizeQuestion(text string) (string, bool) {
	injected := DetectInjection(text)

	out := roleMarker.ReplaceAllString(text, "")
	out = separator.ReplaceAllString(out, "")
	out = spaces.ReplaceAllString(out, " ")
	return strings.TrimSpace(out), injected
}
