package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry records one narrated audio file. The offline cache
// controller reads the manifest at install time to discover which
// audio files to prefetch.
type ManifestEntry struct {
	Word          string `json:"word"`
	SentenceIndex int    `json:"sentence_index"`
	File          string `json:"file"`
}

// WriteManifest writes the audio manifest, creating parent directories.
func WriteManifest(path string, entries []ManifestEntry) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads an audio manifest previously written by
// WriteManifest.
func LoadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return entries, nil
}
