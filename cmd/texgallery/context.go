package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"texgallery/internal/config"
	"texgallery/internal/logging"
	"texgallery/internal/session"
	"texgallery/internal/studio"
)

const defaultSessionFile = "session.json"

type commandContext struct {
	configFlag  *string
	sessionFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, sessionFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		sessionFlag: sessionFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// sessionPath resolves the session document shared by every command.
func (c *commandContext) sessionPath() (string, error) {
	if c.sessionFlag != nil && strings.TrimSpace(*c.sessionFlag) != "" {
		return config.ExpandPath(strings.TrimSpace(*c.sessionFlag))
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg.Paths.OutputDir, defaultSessionFile), nil
}

// openStudio builds a studio and restores the saved session into it. Progress
// bars are attached when interactive is set and stderr is a terminal.
func (c *commandContext) openStudio(cmd *cobra.Command, interactive bool) (*studio.Studio, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	var opts []studio.Option
	if interactive && shouldColorize(cmd.ErrOrStderr()) {
		opts = append(opts, studio.WithListener(newProgressRenderer(cmd.ErrOrStderr())))
	}

	st, err := studio.New(cmd.Context(), cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.restoreSession(cmd, st); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func (c *commandContext) withStudio(cmd *cobra.Command, fn func(*studio.Studio) error) error {
	st, err := c.openStudio(cmd, true)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *commandContext) restoreSession(cmd *cobra.Command, st *studio.Studio) error {
	path, err := c.sessionPath()
	if err != nil {
		return err
	}
	doc, err := readSessionFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	report := st.Restore(doc)
	printWarnings(cmd, report.Warnings)
	return nil
}

func (c *commandContext) saveSession(cmd *cobra.Command, st *studio.Studio) error {
	path, err := c.sessionPath()
	if err != nil {
		return err
	}
	n, err := st.SaveSession(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved session (%d modified) to %s\n", n, path)
	return nil
}

func readSessionFile(path string) (session.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	doc, err := session.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	return doc, nil
}

func printWarnings(cmd *cobra.Command, warnings []session.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: session entry %d: %v\n", w.Index, w)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
