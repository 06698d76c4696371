package studio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"texgallery/internal/archive"
	"texgallery/internal/assets"
	"texgallery/internal/editor"
	"texgallery/internal/fileutil"
	"texgallery/internal/logging"
	"texgallery/internal/raster"
	"texgallery/internal/services"
	"texgallery/internal/session"
)

// Status returns a snapshot of session counters.
func (s *Studio) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Assets:      s.registry.Len(),
		ByType:      make(map[string]int, len(assets.MediaTypes)),
		MultiSelect: s.coordinator.MultiSelect(),
		LiveHandles: s.registry.Machine().Tracker().Live(),
		Groups:      len(s.builder.Groups()),
		Catalog:     catalogStatus(s.catalog),
		Prefetch:    s.prefetch,
	}
	for _, a := range s.registry.All() {
		st.ByType[a.Type.Dir()]++
		if a.IsModified() {
			st.Modified++
		}
		if a.IsNew() {
			st.New++
		}
		if a.FetchErr() != nil {
			st.FetchFailed++
		}
		if a.Selected() {
			st.Selected++
		}
	}
	if s.lastProgress != nil {
		ev := *s.lastProgress
		st.LastProgress = &ev
	}
	return st
}

// LastProgress returns the most recent progress event.
func (s *Studio) LastProgress() (ProgressEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastProgress == nil {
		return ProgressEvent{}, false
	}
	return *s.lastProgress, true
}

// Assets lists assets in catalog order.
func (s *Studio) Assets(filter Filter) ([]AssetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AssetView, 0, s.registry.Len())
	for _, a := range s.registry.All() {
		ok, err := filter.match(a)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, viewOf(a))
		}
	}
	return out, nil
}

// Asset returns one asset by id.
func (s *Studio) Asset(id string) (AssetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(id)
	if err != nil {
		return AssetView{}, err
	}
	return viewOf(a), nil
}

// Content resolves an asset's effective bytes, fetching when nothing is
// cached.
func (s *Studio) Content(ctx context.Context, id string) (*assets.Content, assets.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(id)
	if err != nil {
		return nil, assets.SourceNeedsFetch, err
	}
	return s.registry.Effective(ctx, a, s.fetcher)
}

// Thumbnail returns the effective image scaled so its longer side is at most
// maxSide, encoded as PNG. Images already within bounds are returned as is.
// The result is transient and never committed to the asset.
func (s *Studio) Thumbnail(ctx context.Context, id string, maxSide int) (*assets.Content, assets.Source, error) {
	if maxSide < 1 || maxSide > raster.MaxDimension {
		return nil, assets.SourceNeedsFetch, services.Wrap(services.ErrValidation, "studio", "thumbnail",
			fmt.Sprintf("size %d outside 1..%d", maxSide, raster.MaxDimension), nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(id)
	if err != nil {
		return nil, assets.SourceNeedsFetch, err
	}
	if !a.Type.IsImage() {
		return nil, assets.SourceNeedsFetch, services.Wrap(services.ErrValidation, "studio", "thumbnail",
			fmt.Sprintf("%s is not an image", id), nil)
	}
	content, source, err := s.registry.Effective(ctx, a, s.fetcher)
	if err != nil {
		return nil, source, err
	}
	img, _, err := raster.Decode(content.Bytes())
	if err != nil {
		return nil, source, err
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= maxSide && h <= maxSide {
		return content, source, nil
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	scaled, err := raster.Resize(img, w, h)
	if err != nil {
		return nil, source, err
	}
	data, err := raster.Encode(scaled, "image/png", 0)
	if err != nil {
		return nil, source, err
	}
	return assets.NewContent(data, "image/png"), source, nil
}

// Prefetch fetches every image original not yet cached.
func (s *Studio) Prefetch(ctx context.Context) assets.PrefetchReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefetch = s.registry.Prefetch(ctx, s.fetcher, s.logger)
	return s.prefetch
}

// Edit applies req to a single asset.
func (s *Studio) Edit(ctx context.Context, id string, req editor.Request) (AssetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.lookup(id)
	if err != nil {
		return AssetView{}, err
	}
	op, err := editor.NewOperation(req, s.coordinator.Settings())
	if err != nil {
		return AssetView{}, err
	}
	if _, err := s.coordinator.ApplyOne(ctx, a, op); err != nil {
		return viewOf(a), err
	}
	return viewOf(a), nil
}

// EditSet applies req to the listed assets as one batch, without touching
// the selection.
func (s *Studio) EditSet(ctx context.Context, ids []string, req editor.Request) (editor.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*assets.Asset, 0, len(ids))
	for _, id := range ids {
		a, err := s.lookup(id)
		if err != nil {
			return editor.Report{}, err
		}
		list = append(list, a)
	}
	op, err := editor.NewOperation(req, s.coordinator.Settings())
	if err != nil {
		return editor.Report{}, err
	}
	return s.coordinator.ApplyToSet(ctx, list, op)
}

// Select sets the selection flag on the listed assets. Unknown ids fail the
// call before any flag changes.
func (s *Studio) Select(ids []string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*assets.Asset, 0, len(ids))
	for _, id := range ids {
		a, err := s.lookup(id)
		if err != nil {
			return err
		}
		list = append(list, a)
	}
	for _, a := range list {
		s.registry.SetSelected(a, selected)
	}
	return nil
}

// ClearSelection unselects everything.
func (s *Studio) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ClearSelection()
}

// SetMultiSelect enters or exits multi-select mode. Exiting clears the
// selection.
func (s *Studio) SetMultiSelect(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.coordinator.EnterMultiSelect()
		return
	}
	s.coordinator.ExitMultiSelect()
}

// Bulk applies req to the selection and exits multi-select mode.
func (s *Studio) Bulk(ctx context.Context, req editor.Request) (editor.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, err := editor.NewOperation(req, s.coordinator.Settings())
	if err != nil {
		return editor.Report{}, err
	}
	return s.coordinator.ApplyToSelection(ctx, op)
}

// Export writes the download-all archive to w.
func (s *Studio) Export(ctx context.Context, w io.Writer, modifiedOnly bool) (archive.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := archive.DownloadAllEntries(s.registry, s.fetcher, modifiedOnly)
	return s.packager.Build(ctx, w, entries, archive.Options{Progress: s.archiveProgress("export"), Modified: s.now()})
}

// ExportName is the archive filename for a download-all export.
func (s *Studio) ExportName() string {
	return archive.ArchiveName(s.cfg.Export.ArchivePrefix, s.cfg.Export.Timestamped, s.now())
}

// ExportFile writes the download-all archive into the output directory and
// returns its path.
func (s *Studio) ExportFile(ctx context.Context, modifiedOnly bool) (string, archive.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.cfg.Paths.OutputDir, archive.ArchiveName(s.cfg.Export.ArchivePrefix, s.cfg.Export.Timestamped, s.now()))
	entries := archive.DownloadAllEntries(s.registry, s.fetcher, modifiedOnly)
	result, err := s.packager.WriteFile(ctx, path, entries, archive.Options{Progress: s.archiveProgress("export"), Modified: s.now()})
	if err != nil {
		return "", result, err
	}
	return path, result, nil
}

// Session serializes the modification state.
func (s *Studio) Session() session.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Serialize(s.registry)
}

// Restore applies a session document to the registry.
func (s *Studio) Restore(doc session.Document) session.ApplyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Apply(doc, s.registry, s.logger)
}

// SaveSession writes the session document to path atomically.
func (s *Studio) SaveSession(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(path) == "" {
		return 0, services.Wrap(services.ErrValidation, "studio", "save session", "path is empty", nil)
	}
	doc := session.Serialize(s.registry)
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return session.Encode(w, doc)
	})
	if err != nil {
		return 0, services.Wrap(services.ErrEncode, "studio", "save session", path, err)
	}
	s.logger.Info("session saved",
		logging.String("path", path),
		logging.Int("entries", len(doc)),
	)
	return len(doc), nil
}
