package editor

import (
	"context"
	"errors"
	"log/slog"

	"texgallery/internal/assets"
	"texgallery/internal/logging"
	"texgallery/internal/raster"
	"texgallery/internal/services"
)

// Settings carries encoding and placeholder parameters shared by every run.
type Settings struct {
	JPEGQuality      int
	PlaceholderSize  int
	PlaceholderColor string
}

// Progress is emitted after each asset of a batch.
type Progress struct {
	Operation string `json:"operation"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Label     string `json:"label"`
}

// ProgressFunc receives batch progress.
type ProgressFunc func(Progress)

// Status is the fate of one asset in a run.
type Status string

const (
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

// Outcome records the result for one asset.
type Outcome struct {
	AssetID string
	Status  Status
	Source  assets.Source
	Err     error
}

// Report summarizes a run.
type Report struct {
	Operation string
	Total     int
	Applied   int
	Failed    int
	// Excluded counts audio assets dropped from an image-only run.
	Excluded int
	Outcomes  []Outcome
}

// Failures returns the failed outcomes.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Coordinator applies operations to assets held by one registry.
type Coordinator struct {
	registry    *assets.Registry
	fetcher     assets.Fetcher
	settings    Settings
	logger      *slog.Logger
	progress    ProgressFunc
	sampler     *logging.ProgressSampler
	multiSelect bool
}

// NewCoordinator builds a coordinator over registry.
func NewCoordinator(registry *assets.Registry, fetcher assets.Fetcher, settings Settings, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		registry: registry,
		fetcher:  fetcher,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "editor"),
		sampler:  logging.NewProgressSampler(25),
	}
}

// SetProgressHandler registers the batch progress callback.
func (c *Coordinator) SetProgressHandler(fn ProgressFunc) {
	c.progress = fn
}

// Settings returns the coordinator's encode and placeholder settings.
func (c *Coordinator) Settings() Settings { return c.settings }

// EnterMultiSelect switches to multi-select mode.
func (c *Coordinator) EnterMultiSelect() { c.multiSelect = true }

// ExitMultiSelect leaves multi-select mode and clears the selection.
func (c *Coordinator) ExitMultiSelect() {
	c.multiSelect = false
	c.registry.ClearSelection()
}

// MultiSelect reports whether multi-select mode is active.
func (c *Coordinator) MultiSelect() bool { return c.multiSelect }

// ApplyToSelection runs op over the current selection and then exits
// multi-select mode. A validation failure returns before anything is
// committed and leaves the selection intact.
func (c *Coordinator) ApplyToSelection(ctx context.Context, op Operation) (Report, error) {
	report, err := c.ApplyToSet(ctx, c.registry.Selection(), op)
	if err != nil {
		return report, err
	}
	c.ExitMultiSelect()
	return report, nil
}

// ApplyToSet runs op over list, one asset at a time. Only validation and a
// context cancelled before the first asset return an error; per-asset
// failures are reported in the Report.
func (c *Coordinator) ApplyToSet(ctx context.Context, list []*assets.Asset, op Operation) (Report, error) {
	report := Report{Operation: op.Name()}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if err := op.Prepare(ctx); err != nil {
		return report, err
	}

	targets := make([]*assets.Asset, 0, len(list))
	for _, a := range list {
		if op.ImageOnly() && !a.Type.IsImage() {
			report.Excluded++
			continue
		}
		targets = append(targets, a)
	}
	report.Total = len(targets)

	logger := c.logger.With(logging.String(logging.FieldOperation, op.Name()))
	logger.Info("batch started",
		logging.Int("targets", report.Total),
		logging.Int("excluded", report.Excluded),
	)
	c.sampler.Reset()

	for i, a := range targets {
		outcome := c.applyOne(ctx, a, op)
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Status == StatusFailed {
			report.Failed++
			logger.Warn("edit failed; continuing batch",
				logging.String(logging.FieldAsset, outcome.AssetID),
				logging.String("error_kind", services.Kind(outcome.Err)),
				logging.Error(outcome.Err),
			)
		} else {
			report.Applied++
		}
		c.emit(logger, Progress{Operation: op.Name(), Processed: i + 1, Total: report.Total, Label: a.Filename})
	}

	logger.Info("batch complete",
		logging.Int("applied", report.Applied),
		logging.Int("failed", report.Failed),
	)
	return report, nil
}

// ApplyOne prepares and applies op to a single asset, returning the
// per-asset error directly.
func (c *Coordinator) ApplyOne(ctx context.Context, a *assets.Asset, op Operation) (Outcome, error) {
	if a == nil {
		return Outcome{}, services.Wrap(services.ErrNotFound, "editor", op.Name(), "asset is nil", nil)
	}
	if op.ImageOnly() && !a.Type.IsImage() {
		return Outcome{AssetID: a.ID()}, services.Wrap(services.ErrValidation, "editor", op.Name(), a.ID()+" is not an image", nil)
	}
	if err := op.Prepare(ctx); err != nil {
		return Outcome{AssetID: a.ID()}, err
	}
	outcome := c.applyOne(ctx, a, op)
	return outcome, outcome.Err
}

func (c *Coordinator) applyOne(ctx context.Context, a *assets.Asset, op Operation) Outcome {
	outcome := Outcome{AssetID: a.ID(), Status: StatusFailed}
	ctx = services.WithAssetID(services.WithOperation(ctx, op.Name()), a.ID())

	var in Input
	if op.NeedsInput() {
		resolved, source, err := c.resolve(ctx, a)
		outcome.Source = source
		if err != nil {
			if opt, ok := op.(inputOptional); !ok || !opt.InputOptional() || !services.Recoverable(err) {
				outcome.Err = err
				return outcome
			}
			logging.WithContext(ctx, c.logger).Debug("base unavailable; using placeholder surface", logging.Error(err))
		} else {
			in = resolved
		}
	}

	result, err := op.Apply(ctx, a, in)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if err := c.commit(a, result); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Status = StatusApplied
	return outcome
}

func (c *Coordinator) resolve(ctx context.Context, a *assets.Asset) (Input, assets.Source, error) {
	content, source, err := c.registry.Effective(ctx, a, c.fetcher)
	if err != nil {
		return Input{}, source, err
	}
	img, _, err := raster.Decode(content.Bytes())
	if err != nil {
		return Input{}, source, services.Wrap(services.ErrDecode, "editor", "decode", a.ID(), err)
	}
	return Input{Content: content, Image: img}, source, nil
}

func (c *Coordinator) commit(a *assets.Asset, result Result) error {
	machine := c.registry.Machine()
	if result.Commit == CommitRevert {
		machine.Revert(a)
		return nil
	}
	content := result.Content
	if content == nil {
		if result.Image == nil {
			return errors.New("operation produced no content")
		}
		outMIME := raster.OutputMIME(a.Type.MIME(a.Filename))
		data, err := raster.Encode(result.Image, outMIME, c.settings.JPEGQuality)
		if err != nil {
			return err
		}
		content = assets.NewContent(data, outMIME)
	}
	if result.Commit == CommitReplace {
		return machine.ApplyReplacement(a, content)
	}
	return machine.ApplyModification(a, content)
}

func (c *Coordinator) emit(logger *slog.Logger, p Progress) {
	if c.progress != nil {
		c.progress(p)
	}
	if c.sampler.ShouldLog(p.Processed, p.Total, p.Operation) {
		logger.Info("batch progress",
			logging.Int("processed", p.Processed),
			logging.Int("total", p.Total),
			logging.String("label", p.Label),
		)
	}
}
