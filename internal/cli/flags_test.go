package cli

import (
	"reflect"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DataDir", flags.DataDir, "data"},
		{"PWADir", flags.PWADir, "pwa"},
		{"SentenceProvider", flags.SentenceProvider, "openai"},
		{"SentenceModel", flags.SentenceModel, "gpt-4o-mini"},
		{"AudioProvider", flags.AudioProvider, "openai"},
		{"AudioFormat", flags.AudioFormat, "mp3"},
		{"VoicevoxURL", flags.VoicevoxURL, "http://localhost:50021"},
		{"VoicevoxSpeaker", flags.VoicevoxSpeaker, 1},
		{"OpenAIModel", flags.OpenAIModel, "gpt-4o-mini-tts"},
		{"OpenAIVoice", flags.OpenAIVoice, "nova"},
		{"OpenAISpeed", flags.OpenAISpeed, 0.9},
		{"Addr", flags.Addr, ":8000"},
		{"CacheVersion", flags.CacheVersion, "v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test zero defaults
	if flags.Limit != 0 {
		t.Errorf("Limit = %v, want 0", flags.Limit)
	}
	if flags.AudioDelay != 0 {
		t.Errorf("AudioDelay = %v, want 0", flags.AudioDelay)
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"BaseURL", flags.BaseURL},
		{"AudioFallback", flags.AudioFallback},
		{"OpenAIInstruction", flags.OpenAIInstruction},
		{"CacheFile", flags.CacheFile},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}
}

func TestFlagsStructure(t *testing.T) {
	// Test that Flags struct has all expected fields
	flags := &Flags{}
	flagsType := reflect.TypeOf(*flags)

	expectedFields := []string{
		"CfgFile", "DataDir", "PWADir", "Limit",
		"SentenceProvider", "SentenceModel", "BaseURL",
		"AudioProvider", "AudioFallback", "AudioFormat", "AudioDelay",
		"VoicevoxURL", "VoicevoxSpeaker",
		"OpenAIModel", "OpenAIVoice", "OpenAISpeed", "OpenAIInstruction",
		"Addr", "CacheVersion", "CacheFile",
	}

	for _, fieldName := range expectedFields {
		t.Run("has_field_"+fieldName, func(t *testing.T) {
			if _, ok := flagsType.FieldByName(fieldName); !ok {
				t.Errorf("Flags struct missing field: %s", fieldName)
			}
		})
	}
}
