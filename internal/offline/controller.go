// Package offline implements the offline cache controller: the layer
// between the practice page and the network that guarantees an
// audio-capable experience with no connectivity.
//
// The controller owns one versioned bucket in an injected Store. At
// install time it prefetches a fixed list of static assets (mandatory)
// plus two dynamically discovered sets, the audio files listed in the
// audio manifest and the images referenced from the sentence data
// (both best-effort). At activation it purges every stale bucket. At
// intercept time it serves navigation-class requests network-first and
// everything else cache-first.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
)

// Options configures a Controller.
type Options struct {
	// Version names the cache bucket. Bumping it is the sole
	// invalidation mechanism: the next Install repopulates from
	// scratch and Activate discards every older bucket.
	Version string

	// BaseURL is the origin all root-relative asset paths resolve
	// against. Responses from any other host are never cached.
	BaseURL *url.URL

	// StaticAssets are the root-relative paths that must be present
	// after installation. Install fails if any of them cannot be
	// fetched and cached.
	StaticAssets []string

	// ShellFile is the page-shell filename. Requests for the site
	// root or any path ending in this name are navigation-class.
	ShellFile string

	// AudioManifestPath is the root-relative path of the audio
	// manifest, a JSON array of {file} records naming audio files
	// relative to the manifest's directory.
	AudioManifestPath string

	// SentenceDataPath is the root-relative path of the sentence data
	// file whose image references are prefetched.
	SentenceDataPath string

	Logger *slog.Logger
}

// DefaultOptions returns the asset layout the pipeline produces.
func DefaultOptions(version string) Options {
	base, _ := url.Parse("http://offline.invalid")
	return Options{
		Version: version,
		BaseURL: base,
		StaticAssets: []string{
			"/",
			"/index.html",
			"/manifest.json",
			"/sentences.json",
		},
		ShellFile:         "index.html",
		AudioManifestPath: "/audio/manifest.json",
		SentenceDataPath:  "/sentences.json",
	}
}

// Controller is the offline cache controller. It implements
// http.RoundTripper; every intercepted request passes through
// RoundTrip.
type Controller struct {
	store  Store
	origin http.RoundTripper
	opts   Options
	log    *slog.Logger
	ready  *Broadcaster
	writes sync.WaitGroup
}

// New creates a controller over the given store and origin. The store
// is injected rather than looked up ambiently so its lifecycle is
// explicit and tests can substitute their own.
func New(store Store, origin http.RoundTripper, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		store:  store,
		origin: origin,
		opts:   opts,
		log:    log,
		ready:  NewBroadcaster(),
	}
}

// Install populates the bucket for the current version. The static
// asset list is mandatory: any failure there aborts installation and
// leaves a previously active version serving. The audio manifest and
// image discovery phases are best-effort; their failures are logged
// and installation proceeds without that asset set. There is no retry:
// the next version bump is the retry mechanism.
func (c *Controller) Install(ctx context.Context) error {
	if err := c.store.Open(c.opts.Version); err != nil {
		return fmt.Errorf("failed to open cache bucket %s: %w", c.opts.Version, err)
	}

	if err := c.addAll(ctx, c.opts.StaticAssets); err != nil {
		return fmt.Errorf("failed to precache static assets: %w", err)
	}

	if err := c.prefetchAudio(ctx); err != nil {
		c.log.Warn("audio prefetch skipped", "error", err)
	}

	if err := c.prefetchImages(ctx); err != nil {
		c.log.Warn("image prefetch skipped", "error", err)
	} else {
		c.ready.Notify(Message{Type: MessageOfflineReady})
	}

	return nil
}

// Activate promotes the current version to sole-active by deleting
// every bucket with a different name.
func (c *Controller) Activate(ctx context.Context) error {
	buckets, err := c.store.Buckets()
	if err != nil {
		return fmt.Errorf("failed to list cache buckets: %w", err)
	}

	for _, name := range buckets {
		if name != c.opts.Version {
			c.log.Info("purging stale cache bucket", "bucket", name)
		}
	}
	if err := c.store.Purge(c.opts.Version); err != nil {
		return fmt.Errorf("failed to purge stale buckets: %w", err)
	}
	return nil
}

// Subscribe attaches a client to the readiness broadcast.
func (c *Controller) Subscribe() (<-chan Message, func()) {
	return c.ready.Subscribe()
}

// RoundTrip intercepts a request and applies the retrieval strategy
// for its class.
func (c *Controller) RoundTrip(req *http.Request) (*http.Response, error) {
	if c.isNavigation(req.URL.Path) {
		return c.networkFirst(req)
	}
	return c.cacheFirst(req)
}

// networkFirst serves the page shell: try the network so a new
// deployment is discovered on the next online load, update the cache
// in the background, and fall back to the cached shell when offline.
func (c *Controller) networkFirst(req *http.Request) (*http.Response, error) {
	key := Key(req.Method, req.URL.Path)

	resp, err := c.origin.RoundTrip(req)
	if err == nil {
		entry, serr := snapshot(resp)
		if serr != nil {
			return nil, serr
		}
		if c.cacheable(req, entry.Status) {
			c.scheduleWrite(key, entry)
		}
		return entry.Response(req), nil
	}

	if entry, gerr := c.store.Get(key); gerr == nil {
		return entry.Response(req), nil
	}
	return nil, err
}

// cacheFirst serves audio, images and data: a cached entry is returned
// with no network touch and no freshness check; a miss goes to the
// network and a cacheable response is stored before being returned.
func (c *Controller) cacheFirst(req *http.Request) (*http.Response, error) {
	key := Key(req.Method, req.URL.Path)

	if entry, err := c.store.Get(key); err == nil {
		return entry.Response(req), nil
	}

	resp, err := c.origin.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	entry, err := snapshot(resp)
	if err != nil {
		return nil, err
	}

	if c.cacheable(req, entry.Status) {
		if err := c.store.Put(key, entry); err != nil {
			c.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return entry.Response(req), nil
}

// Handler adapts the controller into an http.Handler so a page server
// can route every request through the intercept path.
func (c *Controller) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := r.Clone(r.Context())
		u := *c.opts.BaseURL
		u.Path = r.URL.Path
		u.RawQuery = r.URL.RawQuery
		out.URL = &u
		out.RequestURI = ""

		resp, err := c.RoundTrip(out)
		if err != nil {
			http.Error(w, "offline and not cached", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for name, values := range resp.Header {
			for _, v := range values {
				w.Header().Add(name, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			c.log.Warn("response copy failed", "path", r.URL.Path, "error", err)
		}
	})
}

// Close waits for in-flight background cache writes and closes the
// store.
func (c *Controller) Close() error {
	c.writes.Wait()
	return c.store.Close()
}

// isNavigation reports whether a path is navigation-class: the site
// root or anything ending in the page-shell filename.
func (c *Controller) isNavigation(p string) bool {
	if p == "/" || p == "" {
		return true
	}
	return c.opts.ShellFile != "" && strings.HasSuffix(p, "/"+c.opts.ShellFile)
}

// cacheable reports whether a response may be persisted: successful
// status and same-origin only. Error and cross-origin responses are
// returned to the caller but never stored.
func (c *Controller) cacheable(req *http.Request, status int) bool {
	if status < 200 || status >= 300 {
		return false
	}
	if req.URL.Host != "" && req.URL.Host != c.opts.BaseURL.Host {
		return false
	}
	return true
}

// scheduleWrite stores an entry in the background. The foreground
// response never waits on it; failures are logged and swallowed.
func (c *Controller) scheduleWrite(key string, entry *Entry) {
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		if err := c.store.Put(key, entry); err != nil {
			c.log.Warn("background cache write failed", "key", key, "error", err)
		}
	}()
}

// addAll fetches every path from the origin and stores the responses.
// The first failure aborts the bulk add.
func (c *Controller) addAll(ctx context.Context, paths []string) error {
	for _, p := range paths {
		req, err := c.newRequest(ctx, p)
		if err != nil {
			return err
		}
		resp, err := c.origin.RoundTrip(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", p, err)
		}
		entry, err := snapshot(resp)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		if !c.cacheable(req, entry.Status) {
			return fmt.Errorf("refusing to cache %s: status %d", p, entry.Status)
		}
		if err := c.store.Put(Key(http.MethodGet, p), entry); err != nil {
			return fmt.Errorf("failed to cache %s: %w", p, err)
		}
	}
	return nil
}

// audioManifestEntry is one record of the audio manifest. Only the
// file field matters to the controller.
type audioManifestEntry struct {
	File string `json:"file"`
}

// prefetchAudio discovers and bulk-adds the narrated audio files. The
// manifest is not known at build time, so absence is tolerated.
func (c *Controller) prefetchAudio(ctx context.Context) error {
	var entries []audioManifestEntry
	if err := c.fetchJSON(ctx, c.opts.AudioManifestPath, &entries); err != nil {
		return err
	}

	dir := path.Dir(c.opts.AudioManifestPath)
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.File == "" {
			continue
		}
		paths = append(paths, path.Join(dir, e.File))
	}
	if err := c.addAll(ctx, paths); err != nil {
		return err
	}

	c.log.Info("audio prefetch complete", "files", len(paths))
	return nil
}

// sentenceRecord mirrors just the image field of the sentence data;
// the controller ignores everything else in the file.
type sentenceRecord struct {
	Sentences []struct {
		Image string `json:"image"`
	} `json:"sentences"`
}

// prefetchImages walks the sentence data for image references and
// bulk-adds them. Duplicate references collapse to one cache entry.
func (c *Controller) prefetchImages(ctx context.Context) error {
	var groups []sentenceRecord
	if err := c.fetchJSON(ctx, c.opts.SentenceDataPath, &groups); err != nil {
		return err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, g := range groups {
		for _, s := range g.Sentences {
			if s.Image == "" {
				continue
			}
			p := s.Image
			if !strings.HasPrefix(p, "/") {
				p = "/" + p
			}
			if seen[p] {
				continue
			}
			seen[p] = true
			paths = append(paths, p)
		}
	}
	if err := c.addAll(ctx, paths); err != nil {
		return err
	}

	c.log.Info("image prefetch complete", "files", len(paths))
	return nil
}

// fetchJSON fetches a root-relative path from the origin and decodes
// the body. Non-success statuses are errors so best-effort phases skip
// cleanly when a companion file is missing.
func (c *Controller) fetchJSON(ctx context.Context, p string, v any) error {
	req, err := c.newRequest(ctx, p)
	if err != nil {
		return err
	}
	resp, err := c.origin.RoundTrip(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", p, err)
	}
	entry, err := snapshot(resp)
	if err != nil {
		return err
	}
	if entry.Status < 200 || entry.Status >= 300 {
		return fmt.Errorf("unexpected status %d for %s", entry.Status, p)
	}
	if err := json.Unmarshal(entry.Body, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", p, err)
	}
	return nil
}

func (c *Controller) newRequest(ctx context.Context, p string) (*http.Request, error) {
	u := *c.opts.BaseURL
	u.Path = p
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", p, err)
	}
	return req, nil
}
