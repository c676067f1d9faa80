package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"melodi/internal/app"
	"melodi/internal/notes"
)

func newNoteCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage journal notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>...",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.CreateNote(ctx, joinArgs(args))
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(notes.ViewOf(n))
				}
				e.printf("Note added: %d\n", n.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				views := a.NoteViews()
				if e.asJSON {
					return e.printJSON(views)
				}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{strconv.FormatInt(v.ID, 10), formatTime(v.Date), oneLine(v.Preview)})
				}
				return e.table("ID\tDATE\tNOTE", rows)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit <id> <text>...",
		Short: "Replace the text of a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.UpdateNote(ctx, id, joinArgs(args[1:]))
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(notes.ViewOf(n))
				}
				e.printf("Note updated: %d\n", n.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.DeleteNote(ctx, id)
				if err != nil {
					return err
				}
				e.reportDeleted("Note", id, removed)
				return nil
			})
		},
	})
	return cmd
}

func (e *env) reportDeleted(what string, id int64, removed bool) {
	if e.asJSON {
		_ = e.printJSON(map[string]bool{"deleted": removed})
		return
	}
	if removed {
		e.printf("%s deleted: %d\n", what, id)
		return
	}
	e.printf("%s %d not found, nothing deleted\n", what, id)
}
