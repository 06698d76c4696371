package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"texgallery/internal/api"
	"texgallery/internal/archive"
	"texgallery/internal/config"
	"texgallery/internal/fileutil"
	"texgallery/internal/modbuilder"
	"texgallery/internal/services"
	"texgallery/internal/studio"
)

func newModPackCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modpack",
		Short: "Texture group mod pack utilities",
	}
	cmd.AddCommand(newModPackGroupsCommand(ctx))
	cmd.AddCommand(newModPackBuildCommand(ctx))
	return cmd
}

func newModPackGroupsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List configured texture groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				groups := st.Groups()
				if jsonOutput {
					return writeJSON(cmd, groups)
				}
				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintln(out, "No texture groups configured")
					return nil
				}
				rows := make([][]string, 0, len(groups))
				for _, g := range groups {
					rows = append(rows, []string{
						g.Name,
						yesNo(g.Modifiable),
						yesNo(g.SupportsSaturation),
						strconv.Itoa(len(g.Files)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Group", "Modifiable", "Saturation", "Files"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

type recordFlags struct {
	colors      []string
	saturations []string
	drawings    []string
	patterns    []string
	greys       []string
}

func newModPackBuildCommand(ctx *commandContext) *cobra.Command {
	var flags recordFlags
	var outputPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build <group>",
		Short: "Build a group's mod pack archive",
		Long: `Build the mod pack archive for one texture group.

Per-file records are given as FILE=VALUE, for example
  --color body.png=#ff0000 --saturation wheel.png=40 --grey trim.png
A file takes at most one record; the last flag for a file wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := strings.TrimSpace(args[0])
			requests, err := flags.requests()
			if err != nil {
				return err
			}
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				for _, r := range requests {
					if err := st.SetGroupRecord(group, r.file, r.req); err != nil {
						return err
					}
				}
				path, result, err := buildPack(cmd, st, group, strings.TrimSpace(outputPath))
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

	cmd.Flags().StringArrayVar(&flags.colors, "color", nil, "FILE=#RRGGBB solid colour record")
	cmd.Flags().StringArrayVar(&flags.saturations, "saturation", nil, "FILE=PERCENT saturation record")
	cmd.Flags().StringArrayVar(&flags.drawings, "drawing", nil, "FILE=PATH drawing JSON record")
	cmd.Flags().StringArrayVar(&flags.patterns, "pattern", nil, "FILE=PATH image tiled as a pattern")
	cmd.Flags().StringArrayVar(&flags.greys, "grey", nil, "FILE grey placeholder record")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archive path (default <output_dir>/<pack name>)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit a JSON summary")
	return cmd
}

type fileRequest struct {
	file string
	req  modbuilder.Request
}

func (f recordFlags) requests() ([]fileRequest, error) {
	var out []fileRequest
	for _, raw := range f.colors {
		file, value, err := splitAssignment("color", raw)
		if err != nil {
			return nil, err
		}
		out = append(out, fileRequest{file, modbuilder.Request{Kind: string(modbuilder.KindColor), Color: value}})
	}
	for _, raw := range f.saturations {
		file, value, err := splitAssignment("saturation", raw)
		if err != nil {
			return nil, err
		}
		percent, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "saturation", raw, err)
		}
		out = append(out, fileRequest{file, modbuilder.Request{Kind: string(modbuilder.KindSaturation), Saturation: &percent}})
	}
	for _, raw := range f.drawings {
		file, value, err := splitAssignment("drawing", raw)
		if err != nil {
			return nil, err
		}
		drawing, err := readDrawing(value)
		if err != nil {
			return nil, err
		}
		out = append(out, fileRequest{file, modbuilder.Request{Kind: string(modbuilder.KindDrawing), Drawing: drawing}})
	}
	for _, raw := range f.patterns {
		file, value, err := splitAssignment("pattern", raw)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("read pattern: %w", err)
		}
		out = append(out, fileRequest{file, modbuilder.Request{
			Kind:    string(modbuilder.KindPattern),
			Pattern: base64.StdEncoding.EncodeToString(data),
		}})
	}
	for _, file := range f.greys {
		file = strings.TrimSpace(file)
		if file == "" {
			return nil, services.Wrap(services.ErrValidation, "cli", "grey", "file name is empty", nil)
		}
		out = append(out, fileRequest{file, modbuilder.Request{Kind: string(modbuilder.KindGreyPlaceholder)}})
	}
	return out, nil
}

func splitAssignment(flag, raw string) (string, string, error) {
	file, value, ok := strings.Cut(raw, "=")
	file = strings.TrimSpace(file)
	value = strings.TrimSpace(value)
	if !ok || file == "" || value == "" {
		return "", "", services.Wrap(services.ErrValidation, "cli", flag,
			fmt.Sprintf("%q must be FILE=VALUE", raw), nil)
	}
	return file, value, nil
}

func buildPack(cmd *cobra.Command, st *studio.Studio, group, output string) (string, archive.Result, error) {
	if output == "" {
		return st.BuildPackFile(cmd.Context(), group)
	}
	path, err := config.ExpandPath(output)
	if err != nil {
		return "", archive.Result{}, fmt.Errorf("resolve output path: %w", err)
	}
	var result archive.Result
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var buildErr error
		result, buildErr = st.BuildPack(cmd.Context(), w, group)
		return buildErr
	})
	if err != nil {
		return "", result, err
	}
	return path, result, nil
}
