package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"texgallery/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCatalogList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "png.txt")
	if err := os.WriteFile(list, []byte("ui logo.png\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckCatalogList("PNG list", list); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	missing := CheckCatalogList("JPG list", filepath.Join(dir, "jpg.txt"))
	if missing.Passed || !missing.Optional {
		t.Fatalf("missing list should be an optional failure, got %+v", missing)
	}
	if r := CheckCatalogList("dir", dir); r.Passed || r.Optional {
		t.Fatalf("directory should be a required failure, got %+v", r)
	}
}

func TestCheckMediaEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/png.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if r := CheckMediaEndpoint(context.Background(), srv.URL+"/", "png.txt", srv.Client()); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckMediaEndpoint(context.Background(), srv.URL, "other.txt", srv.Client())
	if r.Passed || !strings.Contains(r.Detail, "not found") {
		t.Fatalf("expected not found failure, got %+v", r)
	}
	if r := CheckMediaEndpoint(context.Background(), "", "png.txt", nil); r.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_LocalMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.MediaRoot, cfg.Catalog.PNGList), []byte("ui logo.png\n"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	// media root, three lists, output directory
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("missing jpg/audio lists must not block: %+v", failed)
	}
}

func TestRunAll_BlocksOnMissingMediaRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Media root" {
		t.Fatalf("expected media root failure, got %+v", failed)
	}
}

func TestCheckMediaCacheFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if r := CheckMediaCacheFromConfig(context.Background(), cfg); r.Detail != "Disabled" {
		t.Fatalf("expected disabled cache, got %+v", r)
	}
	cfg = testsupport.NewConfig(t, testsupport.WithCache())
	r := CheckMediaCacheFromConfig(context.Background(), cfg)
	if !r.Passed || !strings.HasPrefix(r.Detail, "0 entries") {
		t.Fatalf("expected empty cache summary, got %+v", r)
	}
}
