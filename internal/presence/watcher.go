package presence

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/bus"
	"go.uber.org/zap"
)

// Reader reads status rows and their change feed.
type Reader interface {
	GetTyping(ctx context.Context, user, peer string) (string, error)
	SubscribeWhere(namespace string, bufSize int, match func(bus.Event) bool) (<-chan bus.Event, func())
}

type pair struct{ self, peer string }

type watch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Watcher follows the status peers hold towards self. At most one watch
// exists per (self, peer).
type Watcher struct {
	r       Reader
	refresh time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	watches map[pair]*watch
}

// NewWatcher creates a watcher. A positive refresh re-reads the row on that
// interval, for peers writing from another process.
func NewWatcher(r Reader, refresh time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{r: r, refresh: refresh, logger: logger, watches: make(map[pair]*watch)}
}

// Watch reports the status peer holds towards self to fn, starting with the
// current row. An existing watch of the same pair is torn down first. fn runs
// on the watch goroutine and only when the status changes.
func (w *Watcher) Watch(ctx context.Context, self, peer string, fn func(status string)) error {
	key := pair{self, peer}
	w.Unwatch(self, peer)

	ch, unsub := w.r.SubscribeWhere("", 16, func(evt bus.Event) bool {
		tc, ok := evt.Payload.(backend.TypingChange)
		return ok && tc.UserID == peer && tc.PeerID == self
	})
	seed, err := w.r.GetTyping(ctx, peer, self)
	if err != nil {
		unsub()
		return err
	}

	wctx, cancel := context.WithCancel(context.Background())
	wt := &watch{cancel: cancel, done: make(chan struct{})}
	w.mu.Lock()
	w.watches[key] = wt
	w.mu.Unlock()

	go func() {
		defer close(wt.done)
		defer unsub()

		last := seed
		fn(seed)
		report := func(s string) {
			if s != last {
				last = s
				fn(s)
			}
		}

		var tick <-chan time.Time
		if w.refresh > 0 {
			t := time.NewTicker(w.refresh)
			defer t.Stop()
			tick = t.C
		}
		for {
			select {
			case evt := <-ch:
				report(evt.Payload.(backend.TypingChange).Status)
			case <-tick:
				s, err := w.r.GetTyping(wctx, peer, self)
				if err != nil {
					w.logger.Debug("typing refresh failed", zap.String("peer", peer), zap.Error(err))
					continue
				}
				report(s)
			case <-wctx.Done():
				return
			}
		}
	}()
	return nil
}

// Unwatch stops the watch of (self, peer) and waits for it to exit.
func (w *Watcher) Unwatch(self, peer string) {
	w.mu.Lock()
	wt, ok := w.watches[pair{self, peer}]
	delete(w.watches, pair{self, peer})
	w.mu.Unlock()
	if ok {
		wt.cancel()
		<-wt.done
	}
}

// Active returns the number of live watches.
func (w *Watcher) Active() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

// Close stops every watch.
func (w *Watcher) Close() {
	w.mu.Lock()
	keys := make([]pair, 0, len(w.watches))
	for k := range w.watches {
		keys = append(keys, k)
	}
	w.mu.Unlock()
	for _, k := range keys {
		w.Unwatch(k.self, k.peer)
	}
}
