package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"texgallery/internal/api"
	"texgallery/internal/archive"
	"texgallery/internal/config"
	"texgallery/internal/fileutil"
	"texgallery/internal/studio"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var modifiedOnly bool
	var outputPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the download-all archive from the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				path, result, err := exportArchive(cmd, st, strings.TrimSpace(outputPath), modifiedOnly)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.FromArchiveResult(filepath.Base(path), result))
				}
				printArchiveResult(cmd, path, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&modifiedOnly, "modified", false, "Include only modified and new assets")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archive path (default <output_dir>/<archive name>)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit a JSON summary")
	return cmd
}

func exportArchive(cmd *cobra.Command, st *studio.Studio, output string, modifiedOnly bool) (string, archive.Result, error) {
	if output == "" {
		return st.ExportFile(cmd.Context(), modifiedOnly)
	}
	path, err := config.ExpandPath(output)
	if err != nil {
		return "", archive.Result{}, fmt.Errorf("resolve output path: %w", err)
	}
	var result archive.Result
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var buildErr error
		result, buildErr = st.Export(cmd.Context(), w, modifiedOnly)
		return buildErr
	})
	if err != nil {
		return "", result, err
	}
	return path, result, nil
}

func printArchiveResult(cmd *cobra.Command, path string, result archive.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s (%d files, %s)\n", path, len(result.Paths), humanize.Bytes(uint64(max(result.Bytes, 0))))
	if len(result.Skipped) == 0 {
		return
	}
	rows := make([][]string, 0, len(result.Skipped))
	for _, skip := range result.Skipped {
		rows = append(rows, []string{skip.Label, skip.Path, skip.Err.Error()})
	}
	fmt.Fprintf(out, "Skipped %d entries:\n", len(result.Skipped))
	fmt.Fprintln(out, renderTable(
		[]string{"Asset", "Path", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}
