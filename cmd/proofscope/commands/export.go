package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/export"
)

func newExportCmd(a *app) *cobra.Command {
	var target, out, format string
	var depth int

	cmd := &cobra.Command{
		Use:   "export <doc>",
		Short: "Export the graph (D3 JSON, CSV, NDJSON events)",
		Long: `Exports nodes, links and the type legend. With --target only the proof
subgraph is exported and each node carries its hop distance. The ndjson
format writes ingestion events that load back into the same graph.`,
		Example: `  proofscope export paper.json --out graph.json
  proofscope export paper.json --target thm-2 --depth 3 --out s3://graphs/thm-2.json
  proofscope export paper.json --format csv
  proofscope export paper.json --format ndjson --out paper.ndjson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.newSession(ctx, "")
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := a.load(ctx, s, args[0]); err != nil {
				return err
			}

			var sel export.Selection
			if target != "" {
				if err := a.focus(ctx, s, target, depth); err != nil {
					return err
				}
				st := s.Proof()
				sel = &st
			}

			var data []byte
			switch format {
			case "json":
				data, err = export.GraphJSON(s.Index(), sel)
				data = append(data, '\n')
			case "csv":
				data, err = export.NodesCSV(s.Index(), sel)
			case "ndjson":
				data, err = export.EventStream(s.Index(), sel)
			default:
				return fmt.Errorf("unknown format %q (want json, csv or ndjson)", format)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return a.write(ctx, out, data, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Restrict to the proof of this node id")
	cmd.Flags().IntVar(&depth, "depth", 0, "Prerequisite depth with --target (default proof.default_depth)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path or s3://bucket/key (default stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, csv or ndjson")
	return cmd
}
