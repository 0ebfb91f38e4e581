// Package review pushes "too easy" markings collected by the trainer
// page back to WaniKani so the words advance through their SRS stages.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkondo/kikitori/internal/wanikani"
)

// EasyReview is one word the user marked as too easy in the trainer.
type EasyReview struct {
	SubjectID int    `json:"subject_id"`
	Word      string `json:"word"`
}

// Reviewer submits a single review for a subject.
type Reviewer interface {
	CreateReview(ctx context.Context, subjectID int) error
}

// PushResult summarizes one push run.
type PushResult struct {
	Pushed      int
	Skipped     int
	ArchivePath string
}

// Pusher reads queued reviews from the page directory and submits them.
type Pusher struct {
	client     Reviewer
	queuePath  string
	archiveDir string
}

// NewPusher creates a pusher reading pwaDir/easy_reviews.json and
// archiving processed queues under archiveDir.
func NewPusher(client Reviewer, pwaDir, archiveDir string) *Pusher {
	return &Pusher{
		client:     client,
		queuePath:  filepath.Join(pwaDir, "easy_reviews.json"),
		archiveDir: archiveDir,
	}
}

// Push submits every queued review. Subjects that are not currently
// available for review are skipped rather than failing the run. On
// success the queue file is archived and cleared.
func (p *Pusher) Push(ctx context.Context) (*PushResult, error) {
	reviews, err := loadQueue(p.queuePath)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		fmt.Println("No reviews queued")
		return &PushResult{}, nil
	}

	result := &PushResult{}
	for _, r := range reviews {
		err := p.client.CreateReview(ctx, r.SubjectID)
		if errors.Is(err, wanikani.ErrReviewNotAvailable) {
			fmt.Printf("Skipping %s: not available for review\n", r.Word)
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to push review for %s: %w", r.Word, err)
		}
		fmt.Printf("Pushed review for %s\n", r.Word)
		result.Pushed++
	}

	archivePath, err := p.archiveQueue(reviews)
	if err != nil {
		return result, err
	}
	result.ArchivePath = archivePath

	if err := os.Remove(p.queuePath); err != nil {
		return result, fmt.Errorf("failed to clear review queue: %w", err)
	}
	return result, nil
}

// archiveQueue writes the processed reviews to a timestamped file so a
// failed WaniKani sync can be inspected later.
func (p *Pusher) archiveQueue(reviews []EasyReview) (string, error) {
	if err := os.MkdirAll(p.archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(p.archiveDir, fmt.Sprintf("synced_%s.json", timestamp))
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(p.archiveDir, fmt.Sprintf("synced_%s.json", timestamp))
	}

	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal reviews: %w", err)
	}
	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	return archivePath, nil
}

func loadQueue(path string) ([]EasyReview, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read review queue: %w", err)
	}

	var reviews []EasyReview
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("failed to parse review queue: %w", err)
	}
	return reviews, nil
}
