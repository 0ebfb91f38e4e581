package audio

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// bracketedReading matches furigana annotations the sentence generator
// emits, e.g. 噛(か)まれた or 漢字[かんじ].
var bracketedReading = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|（[^）]*）`)

// ValidateJapaneseText validates that the input text contains Japanese text
func ValidateJapaneseText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	hasJapanese := false
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			hasJapanese = true
			break
		}
	}

	if !hasJapanese {
		return fmt.Errorf("text must contain Japanese characters")
	}

	return nil
}

// CleanText strips bracketed furigana readings from text so the TTS
// engine does not narrate them twice (e.g. 漢字[かんじ] -> 漢字).
func CleanText(text string) string {
	return strings.TrimSpace(bracketedReading.ReplaceAllString(text, ""))
}
