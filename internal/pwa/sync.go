// Package pwa handles the hand-off from the generation stages to the
// installable web page directory.
package pwa

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mkondo/kikitori/internal/sentence"
)

// SyncResult summarizes what a sync moved into the page directory.
type SyncResult struct {
	Words     int
	Sentences int
	Dest      string
}

// SyncSentences copies the generated sentence data file into the page
// directory so the trainer (and its offline cache install) can see it.
func SyncSentences(dataPath, pwaDir string) (*SyncResult, error) {
	groups, err := sentence.Load(dataPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(pwaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create page directory: %w", err)
	}

	dest := filepath.Join(pwaDir, "sentences.json")
	if err := copyFile(dataPath, dest); err != nil {
		return nil, fmt.Errorf("failed to copy sentences: %w", err)
	}

	result := &SyncResult{Words: len(groups), Dest: dest}
	for _, g := range groups {
		result.Sentences += len(g.Sentences)
	}
	return result, nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}
