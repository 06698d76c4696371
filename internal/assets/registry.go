package assets

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"texgallery/internal/logging"
	"texgallery/internal/services"
)

// Fetcher retrieves an asset's declared raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, a *Asset) (*Content, error)
}

// Registry is the ordered, session-lifetime collection of assets. Assets are
// never removed once loaded.
type Registry struct {
	machine *Machine
	assets  []*Asset
	byID    map[string]*Asset
}

// Load merges the sources and stable-sorts them by type priority, then by
// filename. Entries with equal (type, filename) keep their input order.
func Load(machine *Machine, sources ...List) *Registry {
	if machine == nil {
		machine = NewMachine(nil, nil)
	}
	var list []*Asset
	for _, src := range sources {
		for _, entry := range src.Entries {
			list = append(list, &Asset{Folder: entry.Folder, Filename: entry.Filename, Type: src.Type})
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Type != list[j].Type {
			return list[i].Type < list[j].Type
		}
		return list[i].Filename < list[j].Filename
	})

	byID := make(map[string]*Asset, len(list))
	for _, a := range list {
		// first declaration wins lookups on malformed duplicate input
		if _, ok := byID[a.ID()]; !ok {
			byID[a.ID()] = a
		}
	}
	return &Registry{machine: machine, assets: list, byID: byID}
}

// Machine returns the state machine bound to the registry.
func (r *Registry) Machine() *Machine { return r.machine }

func (r *Registry) Len() int { return len(r.assets) }

// All returns the assets in catalog order. The slice is a copy; the assets
// are shared.
func (r *Registry) All() []*Asset {
	out := make([]*Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Images returns the image assets in catalog order.
func (r *Registry) Images() []*Asset {
	out := make([]*Asset, 0, len(r.assets))
	for _, a := range r.assets {
		if a.Type.IsImage() {
			out = append(out, a)
		}
	}
	return out
}

// Lookup finds the first asset declared with folder and filename, across types.
func (r *Registry) Lookup(folder, filename string) (*Asset, bool) {
	for _, a := range r.assets {
		if a.Folder == folder && a.Filename == filename {
			return a, true
		}
	}
	return nil, false
}

// LookupType finds an asset by its full identity.
func (r *Registry) LookupType(t MediaType, folder, filename string) (*Asset, bool) {
	return r.LookupID(MakeID(t, folder, filename))
}

// LookupID finds an asset by ID().
func (r *Registry) LookupID(id string) (*Asset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// SetSelected toggles the ephemeral selection flag.
func (r *Registry) SetSelected(a *Asset, selected bool) {
	if a != nil {
		a.selected = selected
	}
}

// Selection returns the selected assets in catalog order.
func (r *Registry) Selection() []*Asset {
	var out []*Asset
	for _, a := range r.assets {
		if a.selected {
			out = append(out, a)
		}
	}
	return out
}

// ClearSelection unselects every asset.
func (r *Registry) ClearSelection() {
	for _, a := range r.assets {
		a.selected = false
	}
}

// Modified returns assets that carry modified or new content.
func (r *Registry) Modified() []*Asset {
	var out []*Asset
	for _, a := range r.assets {
		if a.isModified || a.isNew {
			out = append(out, a)
		}
	}
	return out
}

// PrefetchReport summarizes a prefetch pass.
type PrefetchReport struct {
	Fetched int
	Cached  int
	Failed  int
}

// Prefetch fetches original bytes for every image asset that has none yet,
// one at a time. Failures flag the asset and never remove it.
func (r *Registry) Prefetch(ctx context.Context, fetcher Fetcher, logger *slog.Logger) PrefetchReport {
	logger = logging.NewComponentLogger(logger, "registry")
	var report PrefetchReport
	for _, a := range r.assets {
		if !a.Type.IsImage() {
			continue
		}
		if a.original != nil {
			report.Cached++
			continue
		}
		if ctx.Err() != nil {
			break
		}
		content, err := fetcher.Fetch(ctx, a)
		if err != nil {
			report.Failed++
			r.machine.MarkFetchFailed(a, err)
			logger.Warn("prefetch failed; asset kept with fetch error",
				logging.String(logging.FieldAsset, a.ID()),
				logging.Error(err),
			)
			continue
		}
		r.machine.SetOriginal(a, content)
		report.Fetched++
	}
	logger.Debug("prefetch complete",
		logging.Int("fetched", report.Fetched),
		logging.Int("cached", report.Cached),
		logging.Int("failed", report.Failed),
	)
	return report
}

// Effective resolves the asset's effective content, falling back to fetching
// the declared media path when nothing is cached. A fetched result populates
// the original when the asset is unmodified.
func (r *Registry) Effective(ctx context.Context, a *Asset, fetcher Fetcher) (*Content, Source, error) {
	if content, source := Resolve(a); content != nil {
		return content, source, nil
	}
	if fetcher == nil {
		return nil, SourceNeedsFetch, services.Wrap(services.ErrConfiguration, "registry", "resolve", "no fetcher configured", nil)
	}
	content, err := fetcher.Fetch(ctx, a)
	if err != nil {
		if !services.Recoverable(err) {
			return nil, SourceNeedsFetch, err
		}
		if !errors.Is(err, services.ErrFetch) {
			err = services.Wrap(services.ErrFetch, "registry", "fetch", a.ID(), err)
		}
		r.machine.MarkFetchFailed(a, err)
		return nil, SourceNeedsFetch, err
	}
	if !a.isModified && !a.isNew {
		r.machine.SetOriginal(a, content)
	}
	return content, SourceOriginal, nil
}
