package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"melodi/internal/app"
	"melodi/internal/cli"
	"melodi/internal/config"
	"melodi/internal/log"
)

// env is the state shared by every command of one invocation.
type env struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	asJSON  bool
	envFile string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	e := &env{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "melodictl",
		Short: "Manage notes, transactions, tasks and habits",
		Long: `melodictl reads and changes the tracker state stored by melodi.
Configuration comes from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&e.asJSON, "json", false, "Print results as JSON")
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "Environment file to load when present")

	root.AddCommand(
		newNoteCmd(e),
		newTxCmd(e),
		newTaskCmd(e),
		newHabitCmd(e),
		newExportCmd(e),
		newEventsCmd(e),
	)
	return root
}

func (e *env) setup() error {
	if err := cli.LoadEnvFile(e.envFile); err != nil {
		return err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if e.verbose {
		cfg.LogLevel = "debug"
	} else {
		cfg.LogLevel = "warn"
	}
	e.cfg = cfg
	e.logger = cli.SetupLogger(cfg, e.errOut).WithComponent(log.ComponentCLI)
	return nil
}

// withApp opens the state for the duration of fn.
func (e *env) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, cleanup, err := cli.OpenApp(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cleanup())
	}()
	return fn(ctx, a)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
