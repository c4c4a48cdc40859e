package dashboard

import (
	"context"
	"sync"
	"time"
)

// SearchDelay is how long the search box waits for typing to pause.
const SearchDelay = 300 * time.Millisecond

// Debouncer turns keystrokes into at most one load per pause.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	session *Session
	ctx     context.Context
	onError func(error)
}

// NewDebouncer creates a debouncer that loads through session. Loads run with
// ctx; onError, when set, receives failed loads.
func NewDebouncer(ctx context.Context, session *Session, delay time.Duration, onError func(error)) *Debouncer {
	if delay <= 0 {
		delay = SearchDelay
	}
	return &Debouncer{delay: delay, session: session, ctx: ctx, onError: onError}
}

// Input records a new query and restarts the timer. When the timer fires the
// query is stored and a load for it is issued.
func (d *Debouncer) Input(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(q) })
}

func (d *Debouncer) fire(q string) {
	if d.ctx.Err() != nil {
		return
	}
	d.session.Store().Dispatch(SetQuery{Q: q})
	if err := d.session.Load(d.ctx, q); err != nil && d.onError != nil {
		d.onError(err)
	}
}

// Stop cancels a pending load.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
