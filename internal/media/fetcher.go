package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"texgallery/internal/assets"
	"texgallery/internal/config"
	"texgallery/internal/logging"
	"texgallery/internal/mediacache"
	"texgallery/internal/services"
)

// maxMediaBytes bounds a single fetched asset.
const maxMediaBytes = 256 << 20

// FileFetcher reads media from a local directory tree.
type FileFetcher struct {
	Root string
}

// NewFileFetcher returns a fetcher rooted at dir.
func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{Root: dir}
}

// Fetch reads <root>/<type>/<filename>.
func (f *FileFetcher) Fetch(ctx context.Context, a *assets.Asset) (*assets.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrFetch, "media", "read file", a.ID(), err)
	}
	target := filepath.Join(f.Root, filepath.FromSlash(a.MediaPath()))
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "media", "read file", target, err)
	}
	return assets.NewContent(data, a.Type.MIME(a.Filename)), nil
}

// HTTPDoer describes the HTTP client used by HTTPFetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher GETs media relative to a base URL.
type HTTPFetcher struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPFetcher builds a fetcher for baseURL. A nil client gets one with the
// given timeout.
func NewHTTPFetcher(baseURL string, client HTTPDoer, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

// Fetch requests <base>/<type>/<filename>. Non-2xx responses are fetch failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, a *assets.Asset) (*assets.Content, error) {
	target := f.baseURL + "/" + a.Type.Dir() + "/" + url.PathEscape(a.Filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "media", "build request", target, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "media", "http get", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrFetch, "media", "http get", target,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "media", "read body", target, err)
	}
	if len(data) > maxMediaBytes {
		return nil, services.Wrap(services.ErrFetch, "media", "read body", target,
			fmt.Errorf("body exceeds %d bytes", maxMediaBytes))
	}
	mimeType := a.Type.MIME(a.Filename)
	if !a.Type.IsImage() {
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			mimeType = ct
		}
	}
	return assets.NewContent(data, mimeType), nil
}

// BlobCache is the persistence used by CachedFetcher.
type BlobCache interface {
	Get(ctx context.Context, key string) (mediacache.Entry, bool, error)
	Put(ctx context.Context, key, mimeType string, data []byte) error
}

// CachedFetcher consults a blob cache before delegating. Cache errors are
// logged and never fail a fetch.
type CachedFetcher struct {
	inner  assets.Fetcher
	cache  BlobCache
	scope  string
	logger *slog.Logger
}

// NewCachedFetcher wraps inner. scope distinguishes media roots sharing one
// cache database.
func NewCachedFetcher(inner assets.Fetcher, cache BlobCache, scope string, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner:  inner,
		cache:  cache,
		scope:  scope,
		logger: logging.NewComponentLogger(logger, "media-cache"),
	}
}

func (f *CachedFetcher) key(a *assets.Asset) string {
	return f.scope + "|" + a.MediaPath()
}

// Fetch returns cached bytes when present, otherwise fetches and stores them.
func (f *CachedFetcher) Fetch(ctx context.Context, a *assets.Asset) (*assets.Content, error) {
	key := f.key(a)
	entry, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.logger.Warn("media cache read failed; fetching directly",
			logging.String(logging.FieldAsset, a.ID()),
			logging.Error(err),
		)
	}
	if ok {
		return assets.NewContent(entry.Data, entry.MIME), nil
	}

	content, err := f.inner.Fetch(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Put(ctx, key, content.MIME(), content.Bytes()); err != nil {
		f.logger.Warn("media cache write failed",
			logging.String(logging.FieldAsset, a.ID()),
			logging.Error(err),
		)
	}
	return content, nil
}

// New builds the fetcher described by cfg. The returned close function
// releases the cache database when one was opened.
func New(cfg *config.Config, logger *slog.Logger) (assets.Fetcher, func() error, error) {
	if cfg == nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "media", "configure", "config is nil", nil)
	}
	root := strings.TrimSpace(cfg.Paths.MediaRoot)
	if root == "" {
		return nil, nil, services.Wrap(services.ErrConfiguration, "media", "configure", "media_root is empty", nil)
	}

	var fetcher assets.Fetcher
	if cfg.RemoteMedia() {
		timeout := time.Duration(cfg.Media.FetchTimeout) * time.Second
		fetcher = NewHTTPFetcher(root, nil, timeout)
	} else {
		fetcher = NewFileFetcher(root)
	}

	noop := func() error { return nil }
	if !cfg.Media.CacheEnabled {
		return fetcher, noop, nil
	}
	store, err := mediacache.Open(cfg)
	if err != nil {
		logging.NewComponentLogger(logger, "media").Warn("media cache unavailable; continuing without it",
			logging.String("cache_dir", cfg.Paths.CacheDir),
			logging.Error(err),
			logging.Bool(logging.FieldAlert, true),
		)
		return fetcher, noop, nil
	}
	return NewCachedFetcher(fetcher, store, root, logger), store.Close, nil
}

// ReadCatalogSource opens a catalog list relative to the media root. Remote
// roots are fetched over HTTP.
func ReadCatalogSource(ctx context.Context, cfg *config.Config, name string, client HTTPDoer) (io.ReadCloser, error) {
	if cfg.RemoteMedia() {
		if client == nil {
			client = &http.Client{Timeout: time.Duration(cfg.Media.FetchTimeout) * time.Second}
		}
		target := strings.TrimRight(cfg.Paths.MediaRoot, "/") + "/" + strings.TrimLeft(name, "/")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, services.Wrap(services.ErrFetch, "media", "catalog request", target, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, services.Wrap(services.ErrFetch, "media", "catalog get", target, err)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			resp.Body.Close()
			marker := services.ErrFetch
			if resp.StatusCode == http.StatusNotFound {
				marker = services.ErrNotFound
			}
			return nil, services.Wrap(marker, "media", "catalog get", target,
				fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		return resp.Body, nil
	}
	target := name
	if !filepath.IsAbs(target) {
		target = filepath.Join(cfg.Paths.MediaRoot, name)
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "media", "open catalog", target, err)
		}
		return nil, services.Wrap(services.ErrFetch, "media", "open catalog", target, err)
	}
	return f, nil
}
