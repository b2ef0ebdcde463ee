package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/export"
)

func newDistillCmd(a *app) *cobra.Command {
	var target, bankPath, out, format string
	var depth int

	cmd := &cobra.Command{
		Use:   "distill <doc>",
		Short: "Write the linearized proof of a node as Markdown",
		Long: `Builds the distilled proof of --target: the target first, then every visible
prerequisite in reading order, then the terms they use that are not nodes themselves.
Terms are resolved against the document's definitions and the optional --bank file.`,
		Example: `  proofscope distill paper.json --target thm-2 --depth 2
  proofscope distill paper.json --target thm-2 --bank defs.yaml --out s3://notes/thm-2.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.newSession(ctx, bankPath)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := a.load(ctx, s, args[0]); err != nil {
				return err
			}
			if err := a.focus(ctx, s, target, depth); err != nil {
				return err
			}

			doc, err := s.Distill(ctx)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "markdown", "md":
				data = export.Markdown(doc)
			case "json":
				if data, err = json.MarshalIndent(doc, "", "  "); err != nil {
					return err
				}
				data = append(data, '\n')
			default:
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			return a.write(ctx, out, data, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Node id to distill (required)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Prerequisite depth (default proof.default_depth)")
	cmd.Flags().StringVar(&bankPath, "bank", "", "YAML or JSON definition bank")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path or s3://bucket/key (default stdout)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown or json")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
