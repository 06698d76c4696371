package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"texgallery/internal/config"
	"texgallery/internal/logging"
	"texgallery/internal/studio"
)

// Daemon serves one studio session and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	studio *studio.Studio
	server *apiServer

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	Address      string        `json:"address,omitempty"`
	LockFilePath string        `json:"lockFilePath"`
	Session      studio.Status `json:"session"`
}

// New constructs a daemon around st.
func New(cfg *config.Config, st *studio.Studio, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and studio")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	lockPath := filepath.Join(cfg.Paths.LogDir, "texgallery.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		studio:   st,
		server:   newAPIServer(cfg, st, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and binds the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another texgallery server is already running")
	}

	if err := d.server.listen(); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("texgallery server started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.address()),
	)
	return nil
}

// Run starts the daemon and serves until ctx is cancelled or the server
// fails. The lock is released before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return d.server.serve()
	})
	g.Go(func() error {
		<-gctx.Done()
		return d.server.shutdown()
	})
	return g.Wait()
}

// Stop shuts down the server and releases the lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.server.shutdown(); err != nil {
		d.logger.Warn("api shutdown failed", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release server lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("texgallery server stopped")
}

// Close stops the daemon and releases the studio's resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.studio.Close()
}

// Address returns the bound listener address, empty before Start.
func (d *Daemon) Address() string {
	return d.server.address()
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Address:      d.server.address(),
		LockFilePath: d.lockPath,
		Session:      d.studio.Status(),
	}
}
