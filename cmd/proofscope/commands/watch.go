package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/engine"
	"github.com/DrSkyle/proofscope/pkg/ingest"
	"github.com/DrSkyle/proofscope/pkg/storage"
)

func newWatchCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "watch <doc>",
		Short: "Re-ingest a local document whenever it changes",
		Example: `  proofscope watch paper.json --target thm-2`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storage.IsS3(args[0]) {
				return errors.New("watch needs a local file")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, err := a.newSession(ctx, "")
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			if err := a.load(ctx, s, args[0]); err != nil {
				return err
			}
			if target != "" {
				if err := a.focus(ctx, s, target, 0); err != nil {
					return err
				}
			}
			a.report(s, "Loaded")

			w, err := ingest.NewWatcher(args[0], a.cfg.Watch.Debounce, func(ctx context.Context, path string) {
				if err := a.load(ctx, s, path); err != nil {
					a.logger.Error("Reload failed", "path", path, "error", err)
					return
				}
				a.report(s, "Reloaded")
			}, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("Watching", "path", w.Path(), "debounce", a.cfg.Watch.Debounce.String())
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Keep the proof of this node id in focus")
	return cmd
}

func (a *app) report(s *engine.Session, msg string) {
	st := s.Stats()
	attrs := []any{"nodes", st.Nodes, "edges", st.Edges, "dangling", st.Dangling}
	if pf := s.Proof(); pf.Active {
		attrs = append(attrs, "target", pf.TargetID, "depth", pf.Depth, "visible", len(pf.VisibleNodes))
	}
	a.logger.Info(msg, attrs...)
}
