// Package assets caches remote images locally so screens keep their artwork
// when the venue link drops
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Materializer turns an image reference into something renderable offline
type Materializer interface {
	// MaterializeForOffline resolves ref to a local path, downloading it if
	// needed. On failure the caller keeps using the original ref; the online
	// path is never blocked by cache trouble.
	MaterializeForOffline(ctx context.Context, ref string) (string, error)
}

// DiskCache is a Materializer backed by a local directory keyed by ref hash
type DiskCache struct {
	dir        string
	origin     *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewDiskCache creates the cache directory if needed. Origin is the provider
// base URL used to resolve relative refs.
func NewDiskCache(dir, origin string, logger zerolog.Logger) (*DiskCache, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("assets: invalid origin: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: creating cache dir: %w", err)
	}
	return &DiskCache{
		dir:    dir,
		origin: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "assets").Logger(),
	}, nil
}

// MaterializeForOffline resolves ref to a cached local path
func (c *DiskCache) MaterializeForOffline(ctx context.Context, ref string) (string, error) {
	// Data URIs are already self-contained
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}

	target, err := c.normalize(ref)
	if err != nil {
		return "", err
	}

	cached := c.cachePath(target)
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	if err := c.download(ctx, target, cached); err != nil {
		return "", err
	}

	c.logger.Debug().Str("ref", ref).Str("path", cached).Msg("asset cached")
	return cached, nil
}

// normalize resolves relative refs against the provider origin
func (c *DiskCache) normalize(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("assets: invalid ref %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return c.origin.ResolveReference(u).String(), nil
}

// cachePath keys cache entries by ref hash, keeping the original extension
// so renderers can sniff the type from the name
func (c *DiskCache) cachePath(target string) string {
	sum := sha256.Sum256([]byte(target))
	name := hex.EncodeToString(sum[:16])
	if ext := path.Ext(target); ext != "" && len(ext) <= 8 {
		name += ext
	}
	return filepath.Join(c.dir, name)
}

func (c *DiskCache) download(ctx context.Context, target, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("assets: creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("assets: downloading %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assets: HTTP %d downloading %s", resp.StatusCode, target)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("assets: creating cache file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("assets: writing cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("assets: closing cache file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("assets: committing cache file: %w", err)
	}
	return nil
}
