package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "missing API key",
			config: &Config{
				OpenAIKey: "",
			},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name: "valid config with cache",
			config: &Config{
				OpenAIKey:   "test-key",
				EnableCache: true,
			},
			wantErr: false,
		},
		{
			name: "valid config without cache",
			config: &Config{
				OpenAIKey:   "test-key",
				EnableCache: false,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.config.EnableCache {
				tt.config.CacheDir = filepath.Join(t.TempDir(), "cache")
			}

			provider, err := NewOpenAIProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOpenAIProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && err.Error() != tt.errMsg {
				t.Errorf("NewOpenAIProvider() error = %v, want %v", err.Error(), tt.errMsg)
			}

			if !tt.wantErr && provider != nil {
				if provider.Name() != "openai" {
					t.Errorf("Name() = %v, want %v", provider.Name(), "openai")
				}
			}
		})
	}
}

func TestOpenAIProviderIsAvailable(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "with API key",
			config: &Config{
				OpenAIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "without API key",
			config: &Config{
				OpenAIKey: "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &OpenAIProvider{
				config: tt.config,
			}
			err := provider.IsAvailable()
			if (err != nil) != tt.wantErr {
				t.Errorf("IsAvailable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetCacheFilePath(t *testing.T) {
	provider := &OpenAIProvider{
		config: &Config{
			OpenAIModel: "tts-1",
			OpenAIVoice: "alloy",
			OpenAISpeed: 1.0,
		},
		cacheDir: "./test_cache",
	}

	// Test basic cache path generation
	path1 := provider.getCacheFilePath("病院に行きました")
	if !strings.HasPrefix(path1, "test_cache/") {
		t.Errorf("Cache path should start with cache dir, got %s", path1)
	}
	if !strings.HasSuffix(path1, ".mp3") {
		t.Errorf("Cache path should end with .mp3, got %s", path1)
	}

	// Test that same input produces same path
	path2 := provider.getCacheFilePath("病院に行きました")
	if path1 != path2 {
		t.Errorf("Same input should produce same cache path, got %s and %s", path1, path2)
	}

	// Test that different input produces different path
	path3 := provider.getCacheFilePath("学校に行きました")
	if path1 == path3 {
		t.Errorf("Different input should produce different cache path")
	}

	// Test that different settings produce different paths
	provider.config.OpenAIVoice = "nova"
	path4 := provider.getCacheFilePath("病院に行きました")
	if path1 == path4 {
		t.Errorf("Different voice should produce different cache path")
	}

	// Test with instruction for gpt-4o-mini-tts
	provider.config.OpenAIModel = "gpt-4o-mini-tts"
	provider.config.OpenAIInstruction = "Test instruction"
	path5 := provider.getCacheFilePath("病院に行きました")

	provider.config.OpenAIInstruction = "Different instruction"
	path6 := provider.getCacheFilePath("病院に行きました")
	if path5 == path6 {
		t.Errorf("Different instruction should produce different cache path for gpt-4o-mini-tts")
	}
}

func TestCopyFile(t *testing.T) {
	tempDir := t.TempDir()

	provider := &OpenAIProvider{}

	// Create source file
	srcPath := filepath.Join(tempDir, "source.txt")
	srcContent := []byte("test content")
	if err := os.WriteFile(srcPath, srcContent, 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	// Test copying to new file
	dstPath := filepath.Join(tempDir, "dest.txt")
	err := provider.copyFile(srcPath, dstPath)
	if err != nil {
		t.Errorf("copyFile() error = %v", err)
	}

	// Verify content
	dstContent, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("Failed to read destination file: %v", err)
	}
	if string(dstContent) != string(srcContent) {
		t.Errorf("Copied content doesn't match: got %q, want %q", dstContent, srcContent)
	}

	// Test copying to subdirectory
	dstPath2 := filepath.Join(tempDir, "subdir", "dest2.txt")
	err = provider.copyFile(srcPath, dstPath2)
	if err != nil {
		t.Errorf("copyFile() to subdirectory error = %v", err)
	}

	// Test copying non-existent file
	err = provider.copyFile(filepath.Join(tempDir, "nonexistent.txt"), dstPath)
	if err == nil {
		t.Error("copyFile() expected error for non-existent source")
	}
}

func TestGenerateAudioValidation(t *testing.T) {
	provider := &OpenAIProvider{
		config: &Config{
			OpenAIKey: "test-key",
		},
	}

	ctx := context.Background()

	// Test with non-Japanese text
	err := provider.GenerateAudio(ctx, "hello", "output.mp3")
	if err == nil {
		t.Error("Expected error for non-Japanese text")
	}
	if !strings.Contains(err.Error(), "must contain Japanese characters") {
		t.Errorf("Expected Japanese validation error, got: %v", err)
	}

	// Test with empty text
	err = provider.GenerateAudio(ctx, "", "output.mp3")
	if err == nil {
		t.Error("Expected error for empty text")
	}
}
