package commands

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/tui"
)

const debugLogFile = "proofscope-debug.log"

func newExploreCmd(a *app) *cobra.Command {
	var target string
	var depth int

	cmd := &cobra.Command{
		Use:   "explore <doc>",
		Short: "Browse the graph interactively (TUI)",
		Long: `Opens the terminal explorer over a document given as a local path or s3://bucket/key.

Logs are discarded while the TUI owns the terminal; with --verbose they go to ` + debugLogFile + `.`,
		Example: `  proofscope explore paper.json
  proofscope explore s3://papers/lagrange.json --target thm-lagrange`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var logOut io.Writer = io.Discard
			if a.cfg.Verbose {
				f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open debug log: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			a.logger = newLogger(a.cfg, logOut)

			s, err := a.newSession(ctx, "")
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := a.load(ctx, s, args[0]); err != nil {
				return err
			}
			if target != "" {
				if err := a.focus(ctx, s, target, depth); err != nil {
					return err
				}
			}

			p := tea.NewProgram(tui.NewModel(ctx, s, args[0]), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("explorer: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Start in proof mode on this node id")
	cmd.Flags().IntVar(&depth, "depth", 0, "Initial proof depth (default proof.default_depth)")
	return cmd
}
