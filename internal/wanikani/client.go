// Package wanikani is a minimal client for the WaniKani v2 API: just
// enough to pull the vocabulary under active study and to push back
// correct reviews for items rated easy in the trainer.
package wanikani

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mkondo/kikitori/internal/vocab"
)

// DefaultBaseURL is the production WaniKani API endpoint.
const DefaultBaseURL = "https://api.wanikani.com/v2"

// subjectBatchSize is how many subject IDs go into one lookup request.
// The API allows up to 1000 per request.
const subjectBatchSize = 500

// ErrReviewNotAvailable is returned by CreateReview when the subject
// is not currently up for review (already reviewed or not unlocked).
var ErrReviewNotAvailable = errors.New("wanikani: subject not available for review")

// Config holds client configuration.
type Config struct {
	APIKey     string
	BaseURL    string       // defaults to DefaultBaseURL
	HTTPClient *http.Client // defaults to a client with a 30s timeout
}

// Client talks to the WaniKani API. All calls go through a circuit
// breaker so a dead or throttling API trips fast instead of grinding
// through a long pagination run.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client from the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "wanikani",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   httpc,
		breaker: breaker,
	}
}

// IsAvailable checks that the client is configured.
func (c *Client) IsAvailable() error {
	if c.apiKey == "" {
		return fmt.Errorf("WaniKani API key is required (set WANIKANI_API_KEY)")
	}
	return nil
}

// apiResponse is what a breaker-wrapped call yields: status and body,
// with transport errors and server errors counted as failures.
type apiResponse struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload any) (*apiResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request: %w", err)
			}
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("WaniKani API error: status %d", resp.StatusCode)
		}
		return &apiResponse{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*apiResponse), nil
}

type assignmentsPage struct {
	Pages struct {
		NextURL string `json:"next_url"`
	} `json:"pages"`
	Data []struct {
		Data struct {
			SubjectID int `json:"subject_id"`
			SRSStage  int `json:"srs_stage"`
		} `json:"data"`
	} `json:"data"`
}

type subjectsPage struct {
	Data []subject `json:"data"`
}

type subject struct {
	ID   int `json:"id"`
	Data struct {
		Characters string `json:"characters"`
		Level      int    `json:"level"`
		Readings   []struct {
			Reading string `json:"reading"`
			Primary bool   `json:"primary"`
		} `json:"readings"`
		Meanings []struct {
			Meaning string `json:"meaning"`
			Primary bool   `json:"primary"`
		} `json:"meanings"`
	} `json:"data"`
}

// FetchVocabulary pulls every vocabulary assignment in SRS stages 1-6
// (apprentice and guru, the actively learned range), resolves the
// subjects, and returns the words sorted by how much practice they
// need. The progress callback, if set, is invoked after each page.
func (c *Client) FetchVocabulary(ctx context.Context, progress func(fetched int)) ([]vocab.Word, error) {
	if err := c.IsAvailable(); err != nil {
		return nil, err
	}

	assignments, err := c.fetchAssignments(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	ids := make([]int, 0, len(assignments))
	stages := make(map[int]int, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.SubjectID)
		stages[a.SubjectID] = a.SRSStage
	}

	subjects, err := c.fetchSubjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subjects: %w", err)
	}

	words := make([]vocab.Word, 0, len(subjects))
	for _, s := range subjects {
		stage, ok := stages[s.ID]
		if !ok {
			continue
		}
		words = append(words, vocab.Word{
			ID:         s.ID,
			Characters: s.Data.Characters,
			Reading:    primaryReading(s),
			Meaning:    primaryMeaning(s),
			Level:      s.Data.Level,
			SRSStage:   stage,
		})
	}

	vocab.Sort(words)
	return words, nil
}

type assignmentData struct {
	SubjectID int
	SRSStage  int
}

func (c *Client) fetchAssignments(ctx context.Context, progress func(int)) ([]assignmentData, error) {
	params := url.Values{}
	params.Set("subject_types", "vocabulary")
	params.Set("srs_stages", "1,2,3,4,5,6")
	next := c.baseURL + "/assignments?" + params.Encode()

	var assignments []assignmentData
	for next != "" {
		resp, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		if resp.status != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.status)
		}

		var page assignmentsPage
		if err := json.Unmarshal(resp.body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse assignments page: %w", err)
		}
		for _, a := range page.Data {
			assignments = append(assignments, assignmentData{
				SubjectID: a.Data.SubjectID,
				SRSStage:  a.Data.SRSStage,
			})
		}
		if progress != nil {
			progress(len(assignments))
		}
		// next_url already carries the filter parameters.
		next = page.Pages.NextURL
	}
	return assignments, nil
}

func (c *Client) fetchSubjects(ctx context.Context, ids []int) ([]subject, error) {
	var subjects []subject
	for start := 0; start < len(ids); start += subjectBatchSize {
		end := start + subjectBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		strIDs := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			strIDs = append(strIDs, strconv.Itoa(id))
		}
		params := url.Values{}
		params.Set("ids", strings.Join(strIDs, ","))

		resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/subjects?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		if resp.status != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.status)
		}

		var page subjectsPage
		if err := json.Unmarshal(resp.body, &page); err != nil {
			return nil, fmt.Errorf("failed to parse subjects page: %w", err)
		}
		subjects = append(subjects, page.Data...)
	}
	return subjects, nil
}

// CreateReview submits a fully correct review for a subject, advancing
// its SRS stage. ErrReviewNotAvailable means the subject cannot be
// reviewed right now and should be skipped, not retried.
func (c *Client) CreateReview(ctx context.Context, subjectID int) error {
	if err := c.IsAvailable(); err != nil {
		return err
	}

	payload := map[string]any{
		"review": map[string]any{
			"subject_id":                subjectID,
			"incorrect_meaning_answers": 0,
			"incorrect_reading_answers": 0,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/reviews", payload)
	if err != nil {
		return err
	}

	switch resp.status {
	case http.StatusCreated:
		return nil
	case http.StatusUnprocessableEntity:
		return ErrReviewNotAvailable
	default:
		return fmt.Errorf("unexpected status %d submitting review for subject %d", resp.status, subjectID)
	}
}

func primaryReading(s subject) string {
	for _, r := range s.Data.Readings {
		if r.Primary {
			return r.Reading
		}
	}
	if len(s.Data.Readings) > 0 {
		return s.Data.Readings[0].Reading
	}
	return ""
}

func primaryMeaning(s subject) string {
	for _, m := range s.Data.Meanings {
		if m.Primary {
			return m.Meaning
		}
	}
	if len(s.Data.Meanings) > 0 {
		return s.Data.Meanings[0].Meaning
	}
	return ""
}
