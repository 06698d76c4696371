package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"texgallery/internal/api"
	"texgallery/internal/editor"
	"texgallery/internal/raster"
	"texgallery/internal/services"
	"texgallery/internal/studio"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	var percent float64
	var req editor.Request
	var drawingPath string
	var all bool
	var filter studio.Filter
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "edit <operation> [asset-id...]",
		Short: "Apply an edit to assets and save the session",
		Long: `Apply one edit operation to the listed assets (or every match with --all).

Operations: saturation, tint, draw, create_new, grey_placeholder, revert.
Image-only operations skip audio assets. The resulting state is written to
the session document so later commands (export, modpack) see it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Operation = args[0]
			if cmd.Flags().Changed("percent") {
				req.Percent = &percent
			}
			if drawingPath != "" {
				drawing, err := readDrawing(drawingPath)
				if err != nil {
					return err
				}
				req.Drawing = drawing
			}
			ids := args[1:]
			if len(ids) == 0 && !all {
				return errors.New("name at least one asset id or pass --all")
			}

			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				if all {
					views, err := st.Assets(filter)
					if err != nil {
						return err
					}
					ids = ids[:0]
					for _, v := range views {
						ids = append(ids, v.ID)
					}
				}
				report, err := st.EditSet(cmd.Context(), ids, req)
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := writeJSON(cmd, api.FromReport(report)); err != nil {
						return err
					}
				} else {
					printEditReport(cmd, report)
				}
				if report.Applied > 0 {
					if err := ctx.saveSession(cmd, st); err != nil {
						return err
					}
				}
				if report.Total == 0 {
					return fmt.Errorf("%s: no eligible assets", report.Operation)
				}
				if report.Applied == 0 && report.Failed > 0 {
					return fmt.Errorf("%s failed for all %d assets", report.Operation, report.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&percent, "percent", 0, "Saturation percent (0 greyscale, 100 unchanged, 200 double)")
	cmd.Flags().StringVar(&req.Color, "color", "", "Colour as #RRGGBB for tint and create_new")
	cmd.Flags().IntVar(&req.Width, "width", 0, "Width for create_new (default placeholder size)")
	cmd.Flags().IntVar(&req.Height, "height", 0, "Height for create_new (default width)")
	cmd.Flags().StringVar(&drawingPath, "drawing", "", "JSON file holding a drawing (canvasSize, strokes)")
	cmd.Flags().BoolVar(&all, "all", false, "Apply to every asset matching the filter flags")
	cmd.Flags().StringVarP(&filter.Type, "type", "t", "", "With --all: filter by type")
	cmd.Flags().StringVar(&filter.State, "state", "", "With --all: filter by state")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "With --all: substring match on folder or filename")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func readDrawing(path string) (*raster.Drawing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drawing: %w", err)
	}
	var drawing raster.Drawing
	if err := json.Unmarshal(data, &drawing); err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "read drawing", path, err)
	}
	return &drawing, nil
}

func printEditReport(cmd *cobra.Command, report editor.Report) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		detail := ""
		if o.Err != nil {
			detail = o.Err.Error()
		} else if o.Status == editor.StatusApplied {
			detail = "from " + o.Source.String()
		}
		rows = append(rows, []string{o.AssetID, string(o.Status), detail})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Asset", "Status", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
	summary := []string{
		fmt.Sprintf("%d applied", report.Applied),
		fmt.Sprintf("%d failed", report.Failed),
	}
	if report.Excluded > 0 {
		summary = append(summary, fmt.Sprintf("%d audio excluded", report.Excluded))
	}
	fmt.Fprintf(out, "%s: %s\n", report.Operation, strings.Join(summary, ", "))
}
