package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"melodi/internal/amqp"
	"melodi/internal/cli"
	"melodi/internal/events"
)

func newEventsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published change events",
	}

	var queue string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print change events as they are published",
		Long: `Bind a queue to the configured exchange and print every event until
interrupted. Without --queue a temporary queue is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.cfg.EventsEnabled() {
				return errors.New("events are disabled: set AMQP_URL")
			}
			client, err := amqp.NewClient(e.cfg.AMQPURL, e.cfg.AMQPExchange, e.cfg.AMQPRoutingKey)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer client.Close()

			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			printed := make(chan events.Event)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer close(printed)
				return client.Consume(gctx, queue, func(ev events.Event) error {
					select {
					case printed <- ev:
						return nil
					case <-gctx.Done():
						return gctx.Err()
					}
				})
			})
			g.Go(func() error {
				for ev := range printed {
					if err := e.printEvent(ev); err != nil {
						return err
					}
				}
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	tail.Flags().StringVar(&queue, "queue", "", "Durable queue to consume from")
	cmd.AddCommand(tail)
	return cmd
}

func (e *env) printEvent(ev events.Event) error {
	if e.asJSON {
		b, err := ev.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(e.out, "%s\n", b)
		return err
	}
	e.printf("%s  %-7s %-11s %d %s\n", formatTime(ev.At), ev.Module, ev.Kind, ev.EntityID, ev.Summary)
	return nil
}
