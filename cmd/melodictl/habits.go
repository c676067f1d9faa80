package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"melodi/internal/app"
	"melodi/internal/habits"
)

func newHabitCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "habit",
		Aliases: []string{"habits"},
		Short:   "Track daily habits and their streaks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>...",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				h, err := a.AddHabit(ctx, joinArgs(args))
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(h)
				}
				e.printf("Habit added: %d\n", h.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List habits with today's status and streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				hs := a.Habits()
				if e.asJSON {
					return e.printJSON(hs)
				}
				rows := make([][]string, 0, len(hs))
				for _, h := range hs {
					rows = append(rows, []string{strconv.FormatInt(h.ID, 10), "[" + check(h.Active) + "]", strconv.Itoa(h.Streak), h.Text})
				}
				return e.table("ID\tTODAY\tSTREAK\tHABIT", rows)
			})
		},
	})

	var (
		note    string
		hasNote bool
		yes     bool
	)
	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Complete a habit for today or undo today's completion",
		Long: `Toggle a habit. Completing asks for a short reflection, which is kept in
the habit log; end input (Ctrl-D) to cancel. Undoing asks for confirmation.
Use --note and --yes to answer without prompts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			hasNote = cmd.Flags().Changed("note")
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.BeginHabitToggle(id)
				if err != nil {
					return fmt.Errorf("habit %d: %w", id, err)
				}
				d, err := e.decide(p, note, hasNote, yes)
				if err != nil {
					return err
				}
				h, committed, err := a.ResolveHabitToggle(ctx, p, d)
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(map[string]any{"committed": committed, "habit": h})
				}
				switch {
				case !committed:
					e.printf("Cancelled, %q unchanged\n", h.Text)
				case h.Active:
					e.printf("%q done for today, streak %d\n", h.Text, h.Streak)
				default:
					e.printf("%q undone, streak %d\n", h.Text, h.Streak)
				}
				return nil
			})
		},
	}
	toggle.Flags().StringVar(&note, "note", "", "Reflection to record when completing")
	toggle.Flags().BoolVarP(&yes, "yes", "y", false, "Answer prompts without asking")
	cmd.AddCommand(toggle)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear today's completions without touching streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.ResetHabits(ctx)
				if err != nil {
					return err
				}
				if e.asJSON {
					return e.printJSON(map[string]int{"reset": n})
				}
				e.printf("Reset %d habit(s)\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a habit; its log entries are kept",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.DeleteHabit(ctx, id)
				if err != nil {
					return err
				}
				e.reportDeleted("Habit", id, removed)
				return nil
			})
		},
	})

	cmd.AddCommand(newHabitLogCmd(e))
	return cmd
}

func newHabitLogCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"logs"},
		Short:   "Browse and prune habit reflections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				logs := a.HabitLogs()
				if e.asJSON {
					return e.printJSON(logs)
				}
				rows := make([][]string, 0, len(logs))
				for _, l := range logs {
					rows = append(rows, []string{strconv.FormatInt(l.ID, 10), formatTime(l.Date), l.HabitName, oneLine(l.Note)})
				}
				return e.table("ID\tDATE\tHABIT\tNOTE", rows)
			})
		},
	}

	var yes bool
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a habit log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			confirmed := yes
			if !confirmed {
				if confirmed, err = e.confirm(fmt.Sprintf("Delete log entry %d?", id)); err != nil {
					return err
				}
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				removed, err := a.DeleteHabitLog(ctx, id, confirmed)
				if err != nil {
					return err
				}
				if !confirmed && !e.asJSON {
					e.printf("Cancelled\n")
					return nil
				}
				e.reportDeleted("Log entry", id, removed)
				return nil
			})
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	cmd.AddCommand(rm)
	return cmd
}

// decide answers a proposed toggle from flags or, failing that, from the
// terminal.
func (e *env) decide(p habits.Pending, note string, hasNote, yes bool) (habits.Decision, error) {
	switch p.Kind {
	case habits.Complete:
		if hasNote || yes {
			return habits.Accept(note), nil
		}
		fmt.Fprintf(e.errOut, "Completing %q (streak %d). Reflection: ", p.HabitName, p.Streak)
		line, ok, err := readLine(e.in)
		if err != nil {
			return habits.Decision{}, err
		}
		if !ok {
			fmt.Fprintln(e.errOut)
			return habits.Decline(), nil
		}
		return habits.Accept(line), nil
	case habits.Undo:
		if yes {
			return habits.Accept(""), nil
		}
		ok, err := e.confirm(fmt.Sprintf("Undo today's %q (streak %d)?", p.HabitName, p.Streak))
		if err != nil || !ok {
			return habits.Decline(), err
		}
		return habits.Accept(""), nil
	default:
		return habits.Decision{}, fmt.Errorf("unknown transition %s", p.Kind)
	}
}

// confirm asks a yes/no question. Anything but y or yes is no.
func (e *env) confirm(question string) (bool, error) {
	fmt.Fprintf(e.errOut, "%s [y/N] ", question)
	line, _, err := readLine(e.in)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine reads one line. ok is false when input ended before any text.
func readLine(r io.Reader) (line string, ok bool, err error) {
	if r == nil {
		return "", false, nil
	}
	line, err = bufio.NewReader(r).ReadString('\n')
	if errors.Is(err, io.EOF) {
		return strings.TrimRight(line, "\r\n"), line != "", nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}
