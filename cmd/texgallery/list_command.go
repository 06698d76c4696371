package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"texgallery/internal/studio"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter studio.Filter
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog assets and their modification state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				views, err := st.Assets(filter)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "No assets match")
					return nil
				}
				fmt.Fprintln(out, renderAssetTable(views))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter.Type, "type", "t", "", "Filter by type (jpg, png, audio)")
	cmd.Flags().StringVar(&filter.State, "state", "", "Filter by state (modified, new, changed, selected, failed)")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Substring match on folder or filename")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderAssetTable(views []studio.AssetView) string {
	rows := make([][]string, 0, len(views))
	changed := 0
	for _, v := range views {
		size := ""
		if v.Bytes > 0 {
			size = strconv.Itoa(v.Bytes)
		}
		note := v.FetchError
		if note == "" && v.MIMEType != "" {
			note = v.MIMEType
		}
		if v.IsModified || v.IsNew {
			changed++
		}
		rows = append(rows, []string{v.ID, v.Type.String(), v.State, size, note})
	}
	return renderTable(
		[]string{"ID", "Type", "State", "Bytes", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		fmt.Sprintf("%d assets", len(views)), "", fmt.Sprintf("%d changed", changed),
	)
}
