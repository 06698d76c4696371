package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"texgallery/internal/daemon"
	"texgallery/internal/fileutil"
	"texgallery/internal/logging"
	"texgallery/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	var saveOnExit bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for the browser gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(signalCtx)

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if strings.TrimSpace(bind) != "" {
				cfg.API.Bind = strings.TrimSpace(bind)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			results := preflight.RunAll(signalCtx, cfg)
			for _, result := range results {
				if !result.Passed {
					logger.Warn("preflight check failed",
						logging.String("check", result.Name),
						logging.String("detail", result.Detail),
						logging.Bool("optional", result.Optional),
					)
				}
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
			}

			gin.SetMode(gin.ReleaseMode)
			st, err := ctx.openStudio(cmd, false)
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, st, logger)
			if err != nil {
				_ = st.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			pidPath := filepath.Join(cfg.Paths.LogDir, "texgallery.pid")
			if err := writePIDFile(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer os.Remove(pidPath)

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s (Ctrl+C to stop)\n", cfg.API.Bind)
			runErr := d.Run(signalCtx)
			if saveOnExit {
				if err := ctx.saveSession(cmd, st); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}
			logger.Info("texgallery server shutting down")
			return runErr
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind (host:port)")
	cmd.Flags().BoolVar(&saveOnExit, "save-session", false, "Write the session document on shutdown")
	return cmd
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return fileutil.WriteFileAtomic(path, []byte(value), 0o644)
}
