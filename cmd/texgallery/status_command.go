package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"texgallery/internal/preflight"
	"texgallery/internal/studio"
)

type statusReport struct {
	ConfigPath  string             `json:"configPath,omitempty"`
	MediaRoot   string             `json:"mediaRoot"`
	SessionPath string             `json:"sessionPath"`
	Checks      []preflight.Result `json:"checks"`
	Session     *studio.Status     `json:"session,omitempty"`
	SessionErr  string             `json:"sessionError,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment checks and session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sessionPath, err := ctx.sessionPath()
			if err != nil {
				return err
			}

			report := statusReport{
				ConfigPath:  ctx.configPath(),
				MediaRoot:   cfg.Paths.MediaRoot,
				SessionPath: sessionPath,
				Checks:      preflight.RunAll(cmd.Context(), cfg),
			}
			report.Checks = append(report.Checks, preflight.CheckMediaCacheFromConfig(cmd.Context(), cfg))

			if st, err := ctx.openStudio(cmd, false); err != nil {
				report.SessionErr = err.Error()
			} else {
				status := st.Status()
				report.Session = &status
				_ = st.Close()
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			printStatus(cmd, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	lines := renderSectionHeader("Environment", colorize)
	lines = append(lines, renderStatusLine("Media root", statusInfo, report.MediaRoot, colorize))
	for _, check := range report.Checks {
		lines = append(lines, renderCheck(check, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Session", colorize)...)
	lines = append(lines, renderStatusLine("Session file", statusInfo, report.SessionPath, colorize))
	if report.Session == nil {
		lines = append(lines, renderStatusLine("Catalog", statusError, report.SessionErr, colorize))
		fmt.Fprintln(out, strings.Join(lines, "\n"))
		return
	}
	s := report.Session
	lines = append(lines, renderStatusLine("Assets", statusInfo, fmt.Sprintf("%d (%s)", s.Assets, formatByType(s.ByType)), colorize))

	catalogKind := statusOK
	catalogMsg := "all lists loaded"
	if len(s.Catalog.Missing) > 0 || s.Catalog.Malformed > 0 {
		catalogKind = statusWarn
		var parts []string
		if len(s.Catalog.Missing) > 0 {
			parts = append(parts, "missing "+strings.Join(s.Catalog.Missing, ", "))
		}
		if s.Catalog.Malformed > 0 {
			parts = append(parts, fmt.Sprintf("%d malformed lines", s.Catalog.Malformed))
		}
		catalogMsg = strings.Join(parts, "; ")
	}
	lines = append(lines, renderStatusLine("Catalog", catalogKind, catalogMsg, colorize))
	lines = append(lines, renderStatusLine("Changes", statusInfo, fmt.Sprintf("%d modified, %d new", s.Modified, s.New), colorize))

	fetchKind := statusOK
	if s.FetchFailed > 0 {
		fetchKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Fetch failures", fetchKind, fmt.Sprintf("%d", s.FetchFailed), colorize))
	lines = append(lines, renderStatusLine("Texture groups", statusInfo, fmt.Sprintf("%d", s.Groups), colorize))

	fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func formatByType(byType map[string]int) string {
	if len(byType) == 0 {
		return "empty"
	}
	keys := make([]string, 0, len(byType))
	for k := range byType {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, byType[k]))
	}
	return strings.Join(parts, ", ")
}
