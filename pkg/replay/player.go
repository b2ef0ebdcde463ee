package replay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the reveal period used when none is configured.
const DefaultInterval = 200 * time.Millisecond

// TickFunc observes a reveal. It runs on the player goroutine and must not
// call Start, Stop or SetInterval on the same player.
type TickFunc func(id string, cursor, total int)

// Player drives a Sequencer from a single ticker.
type Player struct {
	mu  sync.Mutex // guards seq
	seq *Sequencer

	onTick   TickFunc
	onFinish func()

	life     sync.Mutex // guards the loop lifecycle
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	running  atomic.Bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithInterval sets the reveal period.
func WithInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// OnTick registers a callback invoked after every reveal.
func OnTick(fn TickFunc) PlayerOption {
	return func(p *Player) {
		p.onTick = fn
	}
}

// OnFinish registers a callback invoked once the sequence is exhausted. Like
// TickFunc it runs on the player goroutine and must not call Start, Stop or
// SetInterval on the same player.
func OnFinish(fn func()) PlayerOption {
	return func(p *Player) {
		p.onFinish = fn
	}
}

// NewPlayer wraps seq.
func NewPlayer(seq *Sequencer, opts ...PlayerOption) *Player {
	p := &Player{seq: seq, interval: DefaultInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start resets the revealed sets and begins ticking. A running loop is
// torn down first.
func (p *Player) Start(ctx context.Context) {
	p.life.Lock()
	defer p.life.Unlock()

	p.stopLocked()
	p.mu.Lock()
	p.seq.Reset()
	p.mu.Unlock()
	p.startLocked(ctx)
}

// Stop halts ticking. Revealed nodes and edges stay visible.
func (p *Player) Stop() {
	p.life.Lock()
	defer p.life.Unlock()
	p.stopLocked()
}

// SetInterval changes the period. A running loop is recreated with the new
// ticker and continues from the current cursor.
func (p *Player) SetInterval(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	p.life.Lock()
	defer p.life.Unlock()

	p.interval = d
	if p.cancel == nil || !p.running.Load() {
		return
	}
	p.stopLocked()
	p.startLocked(ctx)
}

// Interval returns the current period.
func (p *Player) Interval() time.Duration {
	p.life.Lock()
	defer p.life.Unlock()
	return p.interval
}

// Running reports whether the ticker is live.
func (p *Player) Running() bool {
	return p.running.Load()
}

// Step reveals one node synchronously, for manual stepping or external schedulers.
func (p *Player) Step() (string, bool) {
	p.mu.Lock()
	id, ok := p.seq.Tick()
	cursor, total := p.seq.Cursor(), p.seq.Len()
	p.mu.Unlock()

	if ok && p.onTick != nil {
		p.onTick(id, cursor, total)
	}
	return id, ok
}

// Progress returns the revealed and total node counts.
func (p *Player) Progress() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq.Cursor(), p.seq.Len()
}

// View runs fn with exclusive access to the sequencer.
func (p *Player) View(fn func(*Sequencer)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.seq)
}

func (p *Player) startLocked(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running.Store(true)

	go p.loop(ctx, p.interval, done)
}

func (p *Player) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *Player) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		p.running.Store(false)
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Step()
			if cursor, total := p.Progress(); cursor >= total {
				if p.onFinish != nil {
					p.onFinish()
				}
				return
			}
		}
	}
}
