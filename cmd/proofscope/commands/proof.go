package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/export"
)

func newProofCmd(a *app) *cobra.Command {
	var target, format string
	var depth int

	cmd := &cobra.Command{
		Use:   "proof <doc>",
		Short: "Print the prerequisites of a node",
		Example: `  proofscope proof paper.json --target thm-2 --depth 3
  proofscope proof paper.json --target thm-2 --format json`,
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
			if err := a.focus(ctx, s, target, depth); err != nil {
				return err
			}

			ix := s.Index()
			st := s.Proof()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				data, err := export.GraphJSON(ix, &st)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			case "text":
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			fmt.Fprintf(out, "Proof of %s at depth %d: %d node(s)\n\n", st.TargetID, st.Depth, len(st.VisibleNodes))
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("#", "HOPS", "ID", "TYPE", "LABEL")
			for _, n := range s.VisibleNodes() {
				hops, _ := st.HopsOf(n.ID)
				t.Row(strconv.Itoa(n.OrderIndex), strconv.Itoa(hops), n.ID, n.TypeKey(), n.Label)
			}
			fmt.Fprintln(out, t.String())

			edges := st.Edges(ix)
			if len(edges) > 0 {
				fmt.Fprintln(out)
				for _, e := range edges {
					fmt.Fprintf(out, "  %s -> %s (%s)\n", e.S, e.T, strings.ReplaceAll(e.Dep, "_", " "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Node id whose proof is shown (required)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Prerequisite depth (default proof.default_depth)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
