package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"texgallery/internal/api"
	"texgallery/internal/config"
	"texgallery/internal/session"
	"texgallery/internal/studio"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect, save, and load session documents",
	}
	cmd.AddCommand(newSessionShowCommand(ctx))
	cmd.AddCommand(newSessionSaveCommand(ctx))
	cmd.AddCommand(newSessionLoadCommand(ctx))
	cmd.AddCommand(newSessionClearCommand(ctx))
	return cmd
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the modified assets held by the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				doc := st.Session()
				if jsonOutput {
					return writeJSON(cmd, doc)
				}
				out := cmd.OutOrStdout()
				if len(doc) == 0 {
					fmt.Fprintln(out, "Session has no modified assets")
					return nil
				}
				fmt.Fprintln(out, renderSessionTable(doc))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the session document")
	return cmd
}

func newSessionSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save <path>",
		Short: "Write the current session document to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve session path: %w", err)
			}
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				n, err := st.SaveSession(target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d entries to %s\n", n, target)
				return nil
			})
		},
	}
}

func newSessionLoadCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "load <path>",
		Short: "Apply a session document and keep it as the current session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve session path: %w", err)
			}
			doc, err := readSessionFile(source)
			if err != nil {
				return err
			}
			return ctx.withStudio(cmd, func(st *studio.Studio) error {
				report := st.Restore(doc)
				if jsonOutput {
					if err := writeJSON(cmd, api.FromApplyReport(report)); err != nil {
						return err
					}
				} else {
					printWarnings(cmd, report.Warnings)
					fmt.Fprintf(cmd.OutOrStdout(), "Applied %d of %d entries\n", report.Applied, len(doc))
				}
				return ctx.saveSession(cmd, st)
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit a JSON summary")
	return cmd
}

func newSessionClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the saved session document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.sessionPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := os.Remove(path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintf(out, "No session at %s\n", path)
					return nil
				}
				return fmt.Errorf("remove session: %w", err)
			}
			fmt.Fprintf(out, "Removed %s\n", path)
			return nil
		},
	}
}

func renderSessionTable(doc session.Document) string {
	rows := make([][]string, 0, len(doc))
	for _, e := range doc {
		state := "modified"
		payload := e.ModifiedContentBase64
		if e.IsNew {
			state = "new"
			payload = e.NewContentBase64
		}
		size := ""
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			size = strconv.Itoa(len(data))
		}
		rows = append(rows, []string{
			e.Folder + "/" + e.Filename,
			e.Type,
			state,
			e.MIMEType,
			size,
		})
	}
	return renderTable(
		[]string{"Asset", "Type", "State", "MIME", "Bytes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
