package offline

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
)

// storeFactories lets the same contract tests run against every Store
// implementation.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
			if err != nil {
				t.Fatalf("Failed to create sqlite store: %v", err)
			}
			return store
		},
	}
}

func TestStorePutGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			if err := store.Open("v1"); err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			entry := &Entry{
				Status: http.StatusOK,
				Header: http.Header{"Content-Type": []string{"audio/mpeg"}},
				Body:   []byte("audio bytes"),
			}
			key := Key(http.MethodGet, "/audio/a.mp3")
			if err := store.Put(key, entry); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			got, err := store.Get(key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Status != http.StatusOK {
				t.Errorf("Expected status 200, got %d", got.Status)
			}
			if got.Header.Get("Content-Type") != "audio/mpeg" {
				t.Errorf("Expected audio/mpeg content type, got %q", got.Header.Get("Content-Type"))
			}
			if string(got.Body) != "audio bytes" {
				t.Errorf("Expected stored body, got %q", got.Body)
			}
		})
	}
}

func TestStoreGetMiss(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			if err := store.Open("v1"); err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if _, err := store.Get(Key(http.MethodGet, "/nothing")); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreRequiresOpenBucket(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			if _, err := store.Get("GET /x"); !errors.Is(err, ErrNoBucket) {
				t.Errorf("Expected ErrNoBucket from Get, got %v", err)
			}
			if err := store.Put("GET /x", &Entry{Status: 200}); !errors.Is(err, ErrNoBucket) {
				t.Errorf("Expected ErrNoBucket from Put, got %v", err)
			}
		})
	}
}

func TestStorePutReplaces(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			if err := store.Open("v1"); err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			key := Key(http.MethodGet, "/index.html")
			for _, body := range []string{"old shell", "new shell"} {
				if err := store.Put(key, &Entry{Status: 200, Body: []byte(body)}); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
			}

			got, err := store.Get(key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got.Body) != "new shell" {
				t.Errorf("Expected last write to win, got %q", got.Body)
			}
		})
	}
}

func TestStorePurgeKeepsCurrentBucket(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			for _, version := range []string{"v1", "v2", "v3"} {
				if err := store.Open(version); err != nil {
					t.Fatalf("Open %s failed: %v", version, err)
				}
				key := Key(http.MethodGet, "/index.html")
				if err := store.Put(key, &Entry{Status: 200, Body: []byte(version)}); err != nil {
					t.Fatalf("Put in %s failed: %v", version, err)
				}
			}

			if err := store.Purge("v3"); err != nil {
				t.Fatalf("Purge failed: %v", err)
			}

			buckets, err := store.Buckets()
			if err != nil {
				t.Fatalf("Buckets failed: %v", err)
			}
			if len(buckets) != 1 || buckets[0] != "v3" {
				t.Errorf("Expected only v3 to survive purge, got %v", buckets)
			}

			got, err := store.Get(Key(http.MethodGet, "/index.html"))
			if err != nil {
				t.Fatalf("Get after purge failed: %v", err)
			}
			if string(got.Body) != "v3" {
				t.Errorf("Expected v3 content after purge, got %q", got.Body)
			}
		})
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			if err := store.Open("v1"); err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			// Intercepted requests read and write while an activation
			// switches the bucket. Run under -race.
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					key := Key(http.MethodGet, fmt.Sprintf("/audio/%d.mp3", i))
					for j := 0; j < 20; j++ {
						if err := store.Put(key, &Entry{Status: 200, Body: []byte("x")}); err != nil {
							t.Errorf("Put failed: %v", err)
							return
						}
						if _, err := store.Get(key); err != nil && !errors.Is(err, ErrNotFound) {
							t.Errorf("Get failed: %v", err)
							return
						}
					}
				}(i)
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, version := range []string{"v2", "v1", "v2"} {
					if err := store.Open(version); err != nil {
						t.Errorf("Open %s failed: %v", version, err)
						return
					}
				}
			}()
			wg.Wait()
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Open("v1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	key := Key(http.MethodGet, "/audio/a.mp3")
	if err := store.Put(key, &Entry{Status: 200, Body: []byte("persisted")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Open("v1"); err != nil {
		t.Fatalf("Open after reopen failed: %v", err)
	}

	got, err := reopened.Get(key)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got.Body) != "persisted" {
		t.Errorf("Expected entry to survive reopen, got %q", got.Body)
	}
}
