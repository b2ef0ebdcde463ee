package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/proofscope/pkg/config"
	"github.com/DrSkyle/proofscope/pkg/distill"
	"github.com/DrSkyle/proofscope/pkg/filter"
	"github.com/DrSkyle/proofscope/pkg/graph"
	"github.com/DrSkyle/proofscope/pkg/ingest"
	"github.com/DrSkyle/proofscope/pkg/proof"
	"github.com/DrSkyle/proofscope/pkg/replay"
	"github.com/DrSkyle/proofscope/pkg/telemetry"
	"github.com/DrSkyle/proofscope/pkg/version"
)

// Session is the state of one explorer: its graph store, proof mode and
// replay. Sessions never share mutable state.
type Session struct {
	ID     string
	Store  graph.GraphStore
	Logger *slog.Logger
	Tracer trace.Tracer

	config config.Config

	mu     sync.Mutex // serializes ingestion and proof-mode changes
	proof  *proof.State
	base   *distill.Bank // definitions supplied outside any document
	bank   *distill.Bank // base plus the loaded document's definitions
	filter *filter.Filter

	player *replay.Player
	onTick replay.TickFunc

	mutations metric.Int64Counter
	ticks     metric.Int64Counter

	shutdown telemetry.ShutdownFunc
}

// Option defines a functional configuration override.
type Option func(*Session)

// New initializes a Session.
func New(ctx context.Context, opts ...Option) (*Session, error) {
	// Safe defaults.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		ReplaceAttr: redactSensitiveData,
	})
	s := &Session{
		ID:       uuid.NewString(),
		Store:    graph.NewMemoryStore(),
		Logger:   slog.New(handler),
		Tracer:   telemetry.Tracer("proofscope/engine"),
		config:   config.Default(),
		proof:    proof.New(),
		base:     distill.NewBank(nil),
		shutdown: telemetry.NoopShutdown,
	}

	// Apply options.
	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	f, err := filter.Compile(s.config.Filter)
	if err != nil {
		return nil, err
	}
	s.filter = f
	s.bank = s.freshBank()

	// Initialize telemetry.
	if !s.config.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, s.config.OtelEndpoint)
		if err != nil {
			s.Logger.Warn("Telemetry failed", "error", err)
		} else {
			s.shutdown = shutdown
		}
	}

	meter := telemetry.Meter("proofscope/engine")
	if s.mutations, err = meter.Int64Counter("proofscope.mutations",
		metric.WithDescription("Mutation passes applied to the graph store")); err != nil {
		return nil, fmt.Errorf("create mutations counter: %w", err)
	}
	if s.ticks, err = meter.Int64Counter("proofscope.replay.ticks",
		metric.WithDescription("Nodes revealed by live replay")); err != nil {
		return nil, fmt.Errorf("create ticks counter: %w", err)
	}

	s.Logger = s.Logger.With("session", s.ID)
	return s, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.Logger = l
		}
	}
}

// WithConfig sets raw config.
func WithConfig(cfg config.Config) Option {
	return func(s *Session) {
		s.config = cfg
	}
}

// WithStore replaces the default in-memory store.
func WithStore(st graph.GraphStore) Option {
	return func(s *Session) {
		if st != nil {
			s.Store = st
		}
	}
}

// WithBank sets the definition bank used by distillation. Documents add
// their own definitions on top of it.
func WithBank(b *distill.Bank) Option {
	return func(s *Session) {
		if b != nil {
			s.base = b
		}
	}
}

// WithTickObserver is called on every replay reveal.
func WithTickObserver(fn replay.TickFunc) Option {
	return func(s *Session) {
		s.onTick = fn
	}
}

// Config returns the session configuration.
func (s *Session) Config() config.Config {
	return s.config
}

// Close stops replay and flushes telemetry.
func (s *Session) Close(ctx context.Context) error {
	s.StopReplay()
	return s.shutdown(ctx)
}

// Index returns the last published index.
func (s *Session) Index() *graph.Index {
	return s.Store.Index()
}

// Stats returns store counts.
func (s *Session) Stats() graph.Stats {
	return s.Store.Stats()
}

// Ingest applies events in arrival order, then runs a single mutation pass.
// A reset event also leaves proof mode and drops document definitions.
func (s *Session) Ingest(ctx context.Context, events ...ingest.Event) *graph.Index {
	return s.ingest(ctx, events, nil)
}

func (s *Session) ingest(ctx context.Context, events []ingest.Event, defs map[string]string) *graph.Index {
	_, span := s.Tracer.Start(ctx, "Session.Ingest", trace.WithAttributes(attribute.Int("events", len(events))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var nodes, added, dropped int
	for _, ev := range events {
		switch e := ev.(type) {
		case ingest.NodeEvent:
			if s.Store.UpsertNode(e.Node) {
				nodes++
			}
		case ingest.LinkEvent:
			res := s.Store.AddEdge(e.Edge)
			switch {
			case res.Added:
				added++
			case res.Dropped:
				dropped++
			}
		case ingest.ResetEvent:
			s.Store.Reset()
			s.proof.Exit()
			s.bank = s.freshBank()
		}
	}
	if len(defs) > 0 {
		s.bank.Merge(distill.NewBank(defs))
	}
	span.SetAttributes(
		attribute.Int("nodes", nodes),
		attribute.Int("edges.added", added),
		attribute.Int("edges.dropped", dropped),
	)

	return s.applyLocked(ctx)
}

// applyLocked runs the mutation pass and keeps proof mode consistent with it.
func (s *Session) applyLocked(ctx context.Context) *graph.Index {
	ctx, span := s.Tracer.Start(ctx, "Session.ApplyMutations")
	defer span.End()

	ix := s.Store.ApplyMutations()
	s.mutations.Add(ctx, 1)

	if s.proof.Active {
		if _, ok := ix.Node(s.proof.TargetID); !ok {
			s.Logger.Info("Proof target disappeared, leaving proof mode", "target", s.proof.TargetID)
			s.proof.Exit()
		} else {
			s.recomputeLocked(ctx, ix)
		}
	}

	st := s.Store.Stats()
	span.SetAttributes(attribute.Int("nodes", st.Nodes), attribute.Int("edges", st.Edges), attribute.Int("dangling", st.Dangling))
	s.Logger.Debug("Mutations applied", "nodes", st.Nodes, "edges", st.Edges, "dangling", st.Dangling)
	return ix
}

// LoadDocument replaces the graph with doc. The bank becomes the base bank
// plus the document's definitions, so definitions of an earlier load do not
// survive a reload.
func (s *Session) LoadDocument(ctx context.Context, doc *ingest.Document) *graph.Index {
	ix := s.ingest(ctx, doc.Events(), doc.Definitions)
	s.Logger.Info("Document loaded", "nodes", ix.Len(), "edges", len(ix.Edges), "definitions", len(doc.Definitions))
	return ix
}

// SetFilter compiles and installs a node filter. An empty expression clears it.
func (s *Session) SetFilter(expr string) error {
	f, err := filter.Compile(expr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	return nil
}

// Filter returns the installed filter, possibly nil.
func (s *Session) Filter() *filter.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Session) freshBank() *distill.Bank {
	b := distill.NewBank(nil)
	b.Merge(s.base)
	return b
}

// Bank returns the definition bank.
func (s *Session) Bank() *distill.Bank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank
}

// VisibleNodes returns the proof subgraph nodes when proof mode is active,
// otherwise all nodes, in reading order and passed through the filter.
func (s *Session) VisibleNodes() []*graph.Node {
	ix := s.Index()
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := ix.Nodes
	if s.proof.Active {
		nodes = s.proof.Nodes(ix)
	}
	return s.filter.Apply(nodes)
}

// Proof returns a snapshot of the proof-mode state.
func (s *Session) Proof() proof.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.proof
}

// EnterProof activates proof mode on target at depth 1.
func (s *Session) EnterProof(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix := s.Index()
	if err := s.proof.Enter(ix, target); err != nil {
		return err
	}
	s.Logger.Info("Entered proof mode", "target", target, "depth", s.proof.Depth, "visible", len(s.proof.VisibleNodes))
	return nil
}

// ExitProof leaves proof mode.
func (s *Session) ExitProof() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proof.Exit()
}

// UnfoldMore reveals one more prerequisite layer.
func (s *Session) UnfoldMore(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceDepthChange(ctx, "unfold_more", func(ix *graph.Index) bool { return s.proof.UnfoldMore(ix) })
}

// UnfoldLess hides the outermost prerequisite layer.
func (s *Session) UnfoldLess(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceDepthChange(ctx, "unfold_less", func(ix *graph.Index) bool { return s.proof.UnfoldLess(ix) })
}

// SetProofDepth jumps to depth n, clamped to the reachable range.
func (s *Session) SetProofDepth(ctx context.Context, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traceDepthChange(ctx, "set_depth", func(ix *graph.Index) bool {
		prev := s.proof.Depth
		s.proof.SetDepth(ix, n)
		return s.proof.Depth != prev
	})
}

func (s *Session) traceDepthChange(ctx context.Context, op string, fn func(*graph.Index) bool) bool {
	_, span := s.Tracer.Start(ctx, "Proof.Recompute", trace.WithAttributes(attribute.String("op", op)))
	defer span.End()

	changed := fn(s.Index())
	span.SetAttributes(
		attribute.String("target", s.proof.TargetID),
		attribute.Int("depth", s.proof.Depth),
		attribute.Int("visible", len(s.proof.VisibleNodes)),
		attribute.Bool("changed", changed),
	)
	return changed
}

func (s *Session) recomputeLocked(ctx context.Context, ix *graph.Index) {
	_, span := s.Tracer.Start(ctx, "Proof.Recompute")
	defer span.End()
	s.proof.Recompute(ix)
	span.SetAttributes(attribute.Int("visible", len(s.proof.VisibleNodes)))
}

// Distill builds the distilled document of the current proof.
func (s *Session) Distill(ctx context.Context) (*distill.Document, error) {
	_, span := s.Tracer.Start(ctx, "Distill.Build")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := distill.Build(s.proof, s.Index(), s.bank)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("entries", len(doc.Entries)), attribute.Int("references", len(doc.References)))
	return doc, nil
}

// StartReplay snapshots the current index and begins revealing it from
// scratch. Any running replay is stopped first.
func (s *Session) StartReplay(ctx context.Context) *replay.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
	}
	s.player = s.newPlayerLocked()
	s.player.Start(ctx)
	s.Logger.Info("Replay started", "nodes", s.Index().Len(), "interval", s.config.Replay.Interval.String())
	return s.player
}

// PrepareReplay snapshots the current index into a stopped player, for
// callers that drive ticks themselves.
func (s *Session) PrepareReplay() *replay.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		s.player.Stop()
	}
	s.player = s.newPlayerLocked()
	return s.player
}

func (s *Session) newPlayerLocked() *replay.Player {
	return replay.NewPlayer(replay.New(s.Index()),
		replay.WithInterval(s.config.Replay.Interval),
		replay.OnTick(func(id string, cursor, total int) {
			s.ticks.Add(context.Background(), 1)
			if s.onTick != nil {
				s.onTick(id, cursor, total)
			}
		}),
		replay.OnFinish(func() {
			s.Logger.Info("Replay finished")
		}),
	)
}

// StopReplay halts ticking; revealed nodes stay visible.
func (s *Session) StopReplay() {
	s.mu.Lock()
	p := s.player
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// SetReplayInterval changes the reveal period, recreating a running ticker.
func (s *Session) SetReplayInterval(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	if d > 0 {
		s.config.Replay.Interval = d
	}
	p := s.player
	s.mu.Unlock()
	if p != nil {
		p.SetInterval(ctx, d)
	}
}

// Replay returns the current player, or nil when replay was never started.
func (s *Session) Replay() *replay.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	sensitiveKeys := map[string]bool{
		"password": true, "access_key": true, "token": true,
		"secret": true, "api_key": true, "session_token": true,
		"credential": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}
