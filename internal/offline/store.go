package offline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound is returned by Store.Get when no entry exists for a key.
	ErrNotFound = errors.New("offline: entry not found")

	// ErrNoBucket is returned when a Store is used before Open.
	ErrNoBucket = errors.New("offline: no bucket open")
)

// Key builds the cache key for a request: method plus root-relative path.
// Cached content for a given key is immutable within a version, so the
// key carries no freshness information.
func Key(method, path string) string {
	return method + " " + path
}

// Entry is a captured response: everything needed to replay it to a
// client without touching the network.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// Response rebuilds an *http.Response from the entry, suitable for
// returning from a RoundTripper.
func (e *Entry) Response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// snapshot drains a response into an Entry and closes the body.
func snapshot(resp *http.Response) (*Entry, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Entry{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}, nil
}

// Store is a versioned bucket store for captured responses. Exactly one
// bucket is open at a time; Get and Put operate on the open bucket.
// Put must be idempotent per key (last write wins), which makes
// overlapping writes from concurrent intercepts harmless.
type Store interface {
	// Open creates the bucket for the given version if it does not
	// exist and makes it the open bucket.
	Open(version string) error

	// Buckets lists all bucket names present in the store.
	Buckets() ([]string, error)

	// Purge deletes every bucket except the one named keep.
	Purge(keep string) error

	// Get returns the entry for key in the open bucket, or ErrNotFound.
	Get(key string) (*Entry, error)

	// Put stores the entry under key in the open bucket, replacing any
	// previous entry.
	Put(key string, e *Entry) error

	Close() error
}
