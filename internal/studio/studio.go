package studio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"texgallery/internal/archive"
	"texgallery/internal/assets"
	"texgallery/internal/config"
	"texgallery/internal/editor"
	"texgallery/internal/logging"
	"texgallery/internal/media"
	"texgallery/internal/modbuilder"
	"texgallery/internal/services"
)

// Listener receives session events.
type Listener interface {
	StateChanged(view AssetView)
	Progress(event ProgressEvent)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are ignored.
type ListenerFuncs struct {
	OnStateChanged func(AssetView)
	OnProgress     func(ProgressEvent)
}

func (l ListenerFuncs) StateChanged(view AssetView) {
	if l.OnStateChanged != nil {
		l.OnStateChanged(view)
	}
}

func (l ListenerFuncs) Progress(event ProgressEvent) {
	if l.OnProgress != nil {
		l.OnProgress(event)
	}
}

// ProgressEvent is the unified progress payload for edits and archive builds.
type ProgressEvent struct {
	Kind      string    `json:"kind"`
	Operation string    `json:"operation,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Percent   float64   `json:"percent"`
	Label     string    `json:"label,omitempty"`
	At        time.Time `json:"at"`
}

// Option customizes construction.
type Option func(*options)

type options struct {
	fetcher  assets.Fetcher
	client   media.HTTPDoer
	listener Listener
	now      func() time.Time
}

// WithFetcher overrides the fetcher built from configuration.
func WithFetcher(f assets.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithHTTPClient sets the client used for remote catalog lists.
func WithHTTPClient(client media.HTTPDoer) Option {
	return func(o *options) { o.client = client }
}

// WithListener injects the session event listener.
func WithListener(l Listener) Option {
	return func(o *options) { o.listener = l }
}

// WithClock overrides the clock used for archive names and progress stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Studio is the single-writer owner of one session.
type Studio struct {
	mu sync.Mutex

	cfg          *config.Config
	logger       *slog.Logger
	registry     *assets.Registry
	coordinator  *editor.Coordinator
	builder      *modbuilder.Builder
	packager     *archive.Packager
	fetcher      assets.Fetcher
	closeFetcher func() error
	listener     Listener
	now          func() time.Time

	catalog      media.CatalogReport
	lastProgress *ProgressEvent
	prefetch     assets.PrefetchReport
}

// New loads the catalog described by cfg and wires a session around it.
// Prefetch runs before New returns when enabled in configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Studio, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "studio", "init", "config is nil", nil)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: time.Duration(cfg.Media.FetchTimeout) * time.Second}
	}

	s := &Studio{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "studio"),
		listener: o.listener,
		now:      o.now,
	}
	if s.listener == nil {
		s.listener = ListenerFuncs{}
	}

	s.fetcher, s.closeFetcher = o.fetcher, func() error { return nil }
	if s.fetcher == nil {
		fetcher, closeFn, err := media.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		s.fetcher, s.closeFetcher = fetcher, closeFn
	}

	machine := assets.NewMachine(assets.NewTracker(), assets.ObserverFunc(s.assetChanged))
	registry, report, err := media.LoadRegistry(ctx, cfg, machine, o.client, logger)
	if err != nil {
		_ = s.closeFetcher()
		return nil, err
	}
	s.registry = registry
	s.catalog = report

	s.coordinator = editor.NewCoordinator(registry, s.fetcher, editor.Settings{
		JPEGQuality:      cfg.Export.JPEGQuality,
		PlaceholderSize:  cfg.Export.PlaceholderSize,
		PlaceholderColor: cfg.Export.PlaceholderGrey,
	}, logger)
	s.coordinator.SetProgressHandler(s.editProgress)

	groups, err := modbuilder.Groups(cfg)
	if err != nil {
		_ = s.closeFetcher()
		return nil, err
	}
	settings, err := modbuilder.SettingsFromConfig(cfg)
	if err != nil {
		_ = s.closeFetcher()
		return nil, err
	}
	s.builder = modbuilder.New(groups, settings, logger)
	s.packager = archive.NewPackager(logger)

	if cfg.Media.Prefetch {
		s.prefetch = registry.Prefetch(ctx, s.fetcher, logger)
	}

	s.logger.Info("studio ready",
		logging.Int("assets", registry.Len()),
		logging.Int("groups", len(groups)),
		logging.Bool("prefetch", cfg.Media.Prefetch),
	)
	return s, nil
}

// Close releases the fetcher's resources.
func (s *Studio) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeFetcher == nil {
		return nil
	}
	err := s.closeFetcher()
	s.closeFetcher = nil
	return err
}

// Config returns the configuration the studio was built from.
func (s *Studio) Config() *config.Config { return s.cfg }

func (s *Studio) assetChanged(a *assets.Asset) {
	s.listener.StateChanged(viewOf(a))
}

func (s *Studio) editProgress(p editor.Progress) {
	s.publish(ProgressEvent{
		Kind:      "edit",
		Operation: p.Operation,
		Processed: p.Processed,
		Total:     p.Total,
		Percent:   ratio(p.Processed, p.Total),
		Label:     p.Label,
	})
}

func (s *Studio) archiveProgress(kind string) func(archive.Progress) {
	return func(p archive.Progress) {
		s.publish(ProgressEvent{
			Kind:      kind,
			Phase:     string(p.Phase),
			Processed: p.Processed,
			Total:     p.Total,
			Percent:   p.Percent,
			Label:     p.Label,
		})
	}
}

func (s *Studio) publish(ev ProgressEvent) {
	ev.At = s.now()
	s.lastProgress = &ev
	s.listener.Progress(ev)
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}

func (s *Studio) lookup(id string) (*assets.Asset, error) {
	a, ok := s.registry.LookupID(id)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "studio", "lookup", fmt.Sprintf("asset %q", id), nil)
	}
	return a, nil
}
