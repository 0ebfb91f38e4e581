// Package vocab holds the vocabulary word model shared by the pipeline
// stages and its JSON file persistence.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Word is one vocabulary item under active study.
type Word struct {
	ID         int    `json:"id"`
	Characters string `json:"characters"`
	Reading    string `json:"reading"`
	Meaning    string `json:"meaning"`
	Level      int    `json:"level"`
	SRSStage   int    `json:"srs_stage"`
}

// Sort orders words by SRS stage first (lower stage needs more
// practice) and level second.
func Sort(words []Word) {
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].SRSStage != words[j].SRSStage {
			return words[i].SRSStage < words[j].SRSStage
		}
		return words[i].Level < words[j].Level
	})
}

// Save writes the word list as indented JSON, creating parent
// directories as needed.
func Save(path string, words []Word) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}
	return nil
}

// Load reads a word list previously written by Save.
func Load(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var words []Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}
	return words, nil
}
