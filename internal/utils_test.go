package internal

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"病院", "病院"},
		{"噛まれた", "噛まれた"},
		{"word with spaces", "word_with_spaces"},
		{"path/../traversal", "path____traversal"},
		{"mixed-case_OK123", "mixed-case_OK123"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
