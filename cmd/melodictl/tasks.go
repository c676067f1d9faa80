package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"melodi/internal/app"
	"melodi/internal/core"
)

func newTaskCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage the to-do list",
	}

	var due string
	add := &cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day core.Day
			if due != "" {
				t, err := time.Parse(time.DateOnly, due)
				if err != nil {
					return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", due)
				}
				day = core.DayOf(t)
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t, err := a.AddTask(ctx, joinArgs(args), day)
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(t)
				}
				e.printf("Task added: %d\n", t.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&due, "due", "", "Due date as YYYY-MM-DD")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks, open ones first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ts := a.Tasks()
				if e.asJSON {
					return e.printJSON(map[string]any{"tasks": ts, "progress": a.TaskProgress()})
				}
				rows := make([][]string, 0, len(ts))
				for _, t := range ts {
					rows = append(rows, []string{strconv.FormatInt(t.ID, 10), "[" + check(t.Completed) + "]", dayOrDash(t.Due), t.Text})
				}
				if err := e.table("ID\tDONE\tDUE\tTASK", rows); err != nil {
					return err
				}
				p := a.TaskProgress()
				e.printf("\n%d/%d done (%.0f%%)\n", p.Completed, p.Total, p.Percentage)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task done or open again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				t, ok, err := a.ToggleTask(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("task %d: %w", id, core.ErrNotFound)
				}
				if e.asJSON {
					return e.printJSON(t)
				}
				state := "open"
				if t.Completed {
					state = "done"
				}
				e.printf("Task %d is %s\n", t.ID, state)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.DeleteTask(ctx, id)
				if err != nil {
					return err
				}
				e.reportDeleted("Task", id, removed)
				return nil
			})
		},
	})
	return cmd
}
