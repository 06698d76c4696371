package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"texgallery/internal/studio"
)

// progressRenderer draws one terminal bar per running edit batch or archive
// phase.
type progressRenderer struct {
	out io.Writer

	mu  sync.Mutex
	key string
	bar *progressbar.ProgressBar
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{out: out}
}

func (r *progressRenderer) StateChanged(studio.AssetView) {}

func (r *progressRenderer) Progress(event studio.ProgressEvent) {
	if event.Total <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := event.Kind + "/" + event.Operation + "/" + event.Phase
	if r.bar == nil || r.key != key {
		r.finishLocked()
		r.key = key
		r.bar = progressbar.NewOptions(event.Total,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(describe(event)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(32),
			progressbar.OptionThrottle(50*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.ChangeMax(event.Total)
	_ = r.bar.Set(event.Processed)
	if event.Processed >= event.Total {
		r.finishLocked()
	}
}

func (r *progressRenderer) finishLocked() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
	r.key = ""
}

func describe(event studio.ProgressEvent) string {
	switch {
	case event.Operation != "":
		return event.Operation
	case event.Phase != "":
		return event.Kind + " " + event.Phase
	default:
		return event.Kind
	}
}
