package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/DrSkyle/proofscope/pkg/engine"
	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/replay"
)

func newReplayCmd(a *app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "replay <doc>",
		Short: "Reveal the graph node by node in reading order",
		Example: `  proofscope replay paper.json --interval 50ms`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if cmd.Flags().Changed("interval") {
				a.cfg.Replay.Interval = interval
			}
			out := cmd.OutOrStdout()

			var ix *graph.Index
			done := make(chan struct{})
			var once sync.Once
			observe := func(id string, cursor, total int) {
				name := id
				if n, ok := ix.Node(id); ok {
					name = fmt.Sprintf("%s [%s] %s", id, n.TypeKey(), n.Label)
				}
				fmt.Fprintf(out, "[%d/%d] %s\n", cursor, total, name)
				if cursor >= total {
					once.Do(func() { close(done) })
				}
			}

			s, err := a.newSession(ctx, "", engine.WithTickObserver(observe))
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			if err := a.load(ctx, s, args[0]); err != nil {
				return err
			}
			ix = s.Index()
			if ix.Len() == 0 {
				fmt.Fprintln(out, "Nothing to replay.")
				return nil
			}

			p := s.StartReplay(ctx)
			select {
			case <-done:
			case <-ctx.Done():
				s.StopReplay()
			}

			cursor, total := p.Progress()
			var edges int
			p.View(func(seq *replay.Sequencer) { edges = seq.VisibleEdgeCount() })
			fmt.Fprintf(out, "Revealed %d/%d nodes, %d edges.\n", cursor, total, edges)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Delay between reveals (default replay.interval)")
	return cmd
}
