package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/DrSkyle/proofscope/pkg/distill"
	"github.com/DrSkyle/proofscope/pkg/engine"
	"github.com/DrSkyle/proofscope/pkg/ingest"
	"github.com/DrSkyle/proofscope/pkg/storage"
)

func (a *app) s3Options() storage.S3Options {
	return storage.S3Options{
		Region:   a.cfg.AWS.Region,
		Endpoint: a.cfg.AWS.Endpoint,
		Profile:  a.cfg.AWS.Profile,
	}
}

// newSession builds a session from the resolved config. bankPath, when set,
// seeds the definition bank.
func (a *app) newSession(ctx context.Context, bankPath string, opts ...engine.Option) (*engine.Session, error) {
	base := []engine.Option{
		engine.WithConfig(a.cfg),
		engine.WithLogger(a.logger),
	}
	if bankPath != "" {
		bank, err := distill.LoadBankFile(bankPath)
		if err != nil {
			return nil, err
		}
		base = append(base, engine.WithBank(bank))
	}
	return engine.New(ctx, append(base, opts...)...)
}

// isStream reports whether uri names a newline-delimited event stream rather
// than a whole document.
func isStream(uri string) bool {
	return strings.HasSuffix(uri, ".ndjson") || strings.HasSuffix(uri, ".jsonl")
}

// load reads uri (local path or s3://bucket/key) into s.
func (a *app) load(ctx context.Context, s *engine.Session, uri string) error {
	loc, err := storage.Open(ctx, uri, a.s3Options())
	if err != nil {
		return err
	}
	if isStream(uri) {
		data, err := loc.Read(ctx)
		if err != nil {
			return fmt.Errorf("read %s: %w", uri, err)
		}
		var events []ingest.Event
		err = ingest.ReadStream(ctx, bytes.NewReader(data), func(ev ingest.Event) error {
			events = append(events, ev)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode %s: %w", uri, err)
		}
		s.Ingest(ctx, events...)
	} else {
		doc, err := ingest.LoadDocument(ctx, loc.Store, loc.Key)
		if err != nil {
			return fmt.Errorf("load %s: %w", uri, err)
		}
		s.LoadDocument(ctx, doc)
	}

	st := s.Stats()
	a.logger.Debug("Document loaded", slog.String("uri", loc.URI), slog.Int("nodes", st.Nodes), slog.Int("edges", st.Edges), slog.Int("dangling", st.Dangling))
	return nil
}

// focus enters proof mode on target and jumps to depth, falling back to the
// configured default depth.
func (a *app) focus(ctx context.Context, s *engine.Session, target string, depth int) error {
	if err := s.EnterProof(ctx, target); err != nil {
		return err
	}
	if depth <= 0 {
		depth = a.cfg.Proof.DefaultDepth
	}
	if depth > 1 {
		s.SetProofDepth(ctx, depth)
	}
	return nil
}

// write stores data at out, or prints it when out is empty or "-".
func (a *app) write(ctx context.Context, out string, data []byte, stdout io.Writer) error {
	if out == "" || out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	loc, err := storage.Open(ctx, out, a.s3Options())
	if err != nil {
		return err
	}
	if err := loc.Write(ctx, data); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	a.logger.Info("Wrote output", "uri", loc.URI, "bytes", len(data))
	return nil
}
