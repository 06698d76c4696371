package archive

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"time"

	"texgallery/internal/assets"
	"texgallery/internal/fileutil"
	"texgallery/internal/logging"
	"texgallery/internal/services"
	"texgallery/internal/textutil"
)

// Phase names a build phase in progress events.
type Phase string

const (
	PhaseCollect  Phase = "collect"
	PhaseCompress Phase = "compress"
)

// Progress is emitted per entry while collecting and by bytes while
// compressing.
type Progress struct {
	Phase     Phase   `json:"phase"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	Label     string  `json:"label"`
}

// Entry is one file to package. Resolve is called once during the collect
// phase; the content it returns is the snapshot written to the archive.
type Entry struct {
	Path    string
	Label   string
	Resolve func(ctx context.Context) (*assets.Content, error)
}

// Skip records an entry left out of the archive.
type Skip struct {
	Path  string
	Label string
	Err   error
}

// Options tune one build.
type Options struct {
	// Directories are written as explicit directory entries first.
	Directories []string
	Progress    func(Progress)
	// Modified stamps every zip entry; zero uses the current time.
	Modified time.Time
}

// Result describes a finished archive.
type Result struct {
	Paths   []string
	Skipped []Skip
	Bytes   int64
}

// Packager builds archives.
type Packager struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// NewPackager returns a packager logging through logger.
func NewPackager(logger *slog.Logger) *Packager {
	return &Packager{
		logger:  logging.NewComponentLogger(logger, "archive"),
		sampler: logging.NewProgressSampler(20),
	}
}

type collected struct {
	path    string
	content *assets.Content
}

// Build collects entries and writes them as a zip to w.
func (p *Packager) Build(ctx context.Context, w io.Writer, entries []Entry, opts Options) (Result, error) {
	var result Result
	emit := func(ev Progress) {
		if opts.Progress != nil {
			opts.Progress(ev)
		}
		if p.sampler.ShouldLog(ev.Processed, ev.Total, string(ev.Phase)) {
			p.logger.Debug("archive progress",
				logging.String("phase", string(ev.Phase)),
				logging.Int("processed", ev.Processed),
				logging.Int("total", ev.Total),
			)
		}
	}
	p.sampler.Reset()

	taken := make(map[string]struct{}, len(entries)+len(opts.Directories))
	dirs := make([]string, 0, len(opts.Directories))
	for _, dir := range opts.Directories {
		clean := JoinPath(dir)
		if clean == "" {
			continue
		}
		clean += "/"
		if _, dup := taken[clean]; dup {
			continue
		}
		taken[clean] = struct{}{}
		dirs = append(dirs, clean)
	}

	items := make([]collected, 0, len(entries))
	var totalBytes int64
	for i, entry := range entries {
		content, err := p.resolve(ctx, entry)
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Path: entry.Path, Label: entry.Label, Err: err})
			p.logger.Warn("skipping archive entry",
				logging.String(logging.FieldAsset, entry.Label),
				logging.String("path", entry.Path),
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
		} else {
			name := textutil.UniqueName(taken, JoinPath(entry.Path))
			items = append(items, collected{path: name, content: content})
			totalBytes += int64(content.Len())
		}
		emit(Progress{
			Phase:     PhaseCollect,
			Processed: i + 1,
			Total:     len(entries),
			Percent:   percent(int64(i+1), int64(len(entries))),
			Label:     entry.Label,
		})
	}

	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	counter := &countingWriter{w: w}
	zw := zip.NewWriter(counter)
	emit(Progress{Phase: PhaseCompress, Total: len(items)})
	for _, dir := range dirs {
		if _, err := zw.CreateHeader(&zip.FileHeader{Name: dir, Method: zip.Store, Modified: modified}); err != nil {
			return result, services.Wrap(services.ErrEncode, "archive", "write directory", dir, err)
		}
	}
	var written int64
	for i, item := range items {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: item.path, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return result, services.Wrap(services.ErrEncode, "archive", "create entry", item.path, err)
		}
		n, err := io.Copy(fw, item.content.Reader())
		if err != nil {
			return result, services.Wrap(services.ErrEncode, "archive", "write entry", item.path, err)
		}
		written += n
		result.Paths = append(result.Paths, item.path)
		if i < len(items)-1 {
			emit(Progress{
				Phase:     PhaseCompress,
				Processed: i + 1,
				Total:     len(items),
				Percent:   percent(written, totalBytes),
				Label:     item.path,
			})
		}
	}
	if err := zw.Close(); err != nil {
		return result, services.Wrap(services.ErrEncode, "archive", "finalize", "", err)
	}
	result.Bytes = counter.n
	emit(Progress{Phase: PhaseCompress, Processed: len(items), Total: len(items), Percent: 100})

	p.logger.Info("archive built",
		logging.Int("entries", len(result.Paths)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int64("bytes", result.Bytes),
	)
	return result, nil
}

// WriteFile builds the archive atomically at path.
func (p *Packager) WriteFile(ctx context.Context, path string, entries []Entry, opts Options) (Result, error) {
	var result Result
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var buildErr error
		result, buildErr = p.Build(ctx, w, entries, opts)
		return buildErr
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

func (p *Packager) resolve(ctx context.Context, entry Entry) (*assets.Content, error) {
	if entry.Resolve == nil {
		return nil, services.Wrap(services.ErrNotFound, "archive", "resolve", entry.Path+": no content source", nil)
	}
	content, err := entry.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, services.Wrap(services.ErrNotFound, "archive", "resolve", entry.Path+": empty content", nil)
	}
	return content, nil
}

func percent(done, total int64) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// DownloadAllEntries lists every registry asset, or only edited ones when
// modifiedOnly is set, at its download-all path. Content is resolved lazily
// through the registry, fetching when nothing is cached.
func DownloadAllEntries(registry *assets.Registry, fetcher assets.Fetcher, modifiedOnly bool) []Entry {
	list := registry.All()
	if modifiedOnly {
		list = registry.Modified()
	}
	entries := make([]Entry, 0, len(list))
	for _, a := range list {
		entries = append(entries, Entry{
			Path:  DownloadAllPath(a.Type, a.Folder, a.Filename),
			Label: a.ID(),
			Resolve: func(ctx context.Context) (*assets.Content, error) {
				content, _, err := registry.Effective(ctx, a, fetcher)
				return content, err
			},
		})
	}
	return entries
}
