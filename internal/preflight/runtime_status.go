package preflight

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"texgallery/internal/config"
	"texgallery/internal/mediacache"
)

// CheckMediaCacheFromConfig summarizes the on-disk media cache.
func CheckMediaCacheFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Media cache"

	if cfg == nil {
		return Result{Name: name, Optional: true, Detail: "Unknown"}
	}
	if !cfg.Media.CacheEnabled {
		return Result{Name: name, Passed: true, Optional: true, Detail: "Disabled"}
	}
	store, err := mediacache.Open(cfg)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("unavailable (%v)", err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("stats failed (%v)", err)}
	}
	return Result{
		Name:     name,
		Passed:   true,
		Optional: true,
		Detail:   fmt.Sprintf("%d entries, %s (%s)", stats.Entries, humanize.Bytes(uint64(stats.Bytes)), store.Path()),
	}
}
