package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"melodi/internal/app"
)

func newExportCmd(e *env) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole state as YAML or JSON",
		Long: `Write the whole state. JSON output is the stored blob format; YAML uses
the same field names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q: want yaml or json", format)
			}
			return e.withApp(cmd, func(ctx context.Context, a *app.App) error {
				w := e.out
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				if err := exportState(w, a, format); err != nil {
					return err
				}
				if w != e.out {
					e.printf("Exported %s to %s\n", a.Key(), output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "File to write, - for stdout")
	return cmd
}

func exportState(w io.Writer, a *app.App, format string) error {
	body, err := json.MarshalIndent(a.State(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintf(w, "%s\n", body)
		return err
	}

	// JSON is valid YAML, so decoding it into a node keeps the JSON field
	// names and the list order.
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("convert state: %w", err)
	}
	clearStyle(&doc)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// clearStyle switches flow-style JSON nodes to block style.
func clearStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Style&yaml.DoubleQuotedStyle != 0 {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		clearStyle(c)
	}
}
