package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

const maxLineSize = 16 << 20

// ReadStream decodes newline-delimited event envelopes from r and hands
// each to fn in arrival order. Blank lines are skipped. It stops at the
// first decode error, the first error from fn, or when ctx is done.
func ReadStream(ctx context.Context, r io.Reader, fn func(Event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		ev, err := DecodeEvent(b)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return sc.Err()
}
