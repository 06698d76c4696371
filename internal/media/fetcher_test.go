package media_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"texgallery/internal/assets"
	"texgallery/internal/media"
	"texgallery/internal/mediacache"
	"texgallery/internal/services"
)

func writeMedia(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	target := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileFetcherReadsTypedPath(t *testing.T) {
	root := t.TempDir()
	writeMedia(t, root, "png/body.png", []byte("png-bytes"))

	fetcher := media.NewFileFetcher(root)
	a := &assets.Asset{Folder: "cars", Filename: "body.png", Type: assets.TypePNG}
	content, err := fetcher.Fetch(context.Background(), a)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(content.Bytes()) != "png-bytes" || content.MIME() != "image/png" {
		t.Fatalf("unexpected content %q %s", content.Bytes(), content.MIME())
	}

	missing := &assets.Asset{Folder: "cars", Filename: "nope.png", Type: assets.TypePNG}
	if _, err := fetcher.Fetch(context.Background(), missing); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/jpg/rifle skin.jpg":
			_, _ = w.Write([]byte("jpeg"))
		case "/media/audio/horn.ogg":
			w.Header().Set("Content-Type", "audio/ogg")
			_, _ = w.Write([]byte("ogg"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := media.NewHTTPFetcher(server.URL+"/media/", server.Client(), 0)
	ctx := context.Background()

	content, err := fetcher.Fetch(ctx, &assets.Asset{Folder: "w", Filename: "rifle skin.jpg", Type: assets.TypeJPG})
	if err != nil {
		t.Fatalf("Fetch jpg: %v", err)
	}
	if string(content.Bytes()) != "jpeg" || content.MIME() != "image/jpeg" {
		t.Fatalf("unexpected jpg content %q %s", content.Bytes(), content.MIME())
	}

	audio, err := fetcher.Fetch(ctx, &assets.Asset{Folder: "s", Filename: "horn.ogg", Type: assets.TypeAudio})
	if err != nil {
		t.Fatalf("Fetch audio: %v", err)
	}
	if audio.MIME() != "audio/ogg" {
		t.Fatalf("expected server content type, got %s", audio.MIME())
	}

	_, err = fetcher.Fetch(ctx, &assets.Asset{Folder: "x", Filename: "gone.png", Type: assets.TypePNG})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch failure for 404, got %v", err)
	}
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, a *assets.Asset) (*assets.Content, error) {
	f.calls++
	return assets.NewContent([]byte("bytes:"+a.Filename), "image/png"), nil
}

func TestCachedFetcherStoresOnMiss(t *testing.T) {
	store, err := mediacache.OpenPath(filepath.Join(t.TempDir(), "media.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	inner := &countingFetcher{}
	fetcher := media.NewCachedFetcher(inner, store, "root", nil)
	a := &assets.Asset{Folder: "f", Filename: "a.png", Type: assets.TypePNG}

	for i := 0; i < 3; i++ {
		content, err := fetcher.Fetch(context.Background(), a)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if string(content.Bytes()) != "bytes:a.png" {
			t.Fatalf("unexpected bytes %q", content.Bytes())
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", inner.calls)
	}
}
