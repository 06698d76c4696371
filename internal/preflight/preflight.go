package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"texgallery/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional failures are reported but never block startup.
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Media root and catalog lists
	if cfg.RemoteMedia() {
		results = append(results, CheckMediaEndpoint(ctx, cfg.Paths.MediaRoot, cfg.Catalog.PNGList, nil))
	} else {
		results = append(results, CheckReadableDirectory("Media root", cfg.Paths.MediaRoot))
		for _, list := range catalogLists(cfg) {
			results = append(results, CheckCatalogList(list.name, list.path))
		}
	}

	// Export output (always checked)
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))

	if cfg.Media.CacheEnabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}

	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

type catalogList struct {
	name string
	path string
}

func catalogLists(cfg *config.Config) []catalogList {
	candidates := []catalogList{
		{"JPG list", cfg.Catalog.JPGList},
		{"PNG list", cfg.Catalog.PNGList},
		{"Audio list", cfg.Catalog.AudioList},
	}
	out := make([]catalogList, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.path) == "" {
			continue
		}
		if !filepath.IsAbs(c.path) {
			c.path = filepath.Join(cfg.Paths.MediaRoot, c.path)
		}
		out = append(out, c)
	}
	return out
}
