// Package session tracks the authenticated principal as reported by the
// identity provider.
package session

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/pkg/model"
)

// Observer holds the current session and republishes provider events to
// subscribers. It never changes the session on its own.
type Observer struct {
	mu      sync.RWMutex
	current *model.Session
	subs    map[uint64]func(model.AuthEvent)
	nextID  uint64
	logger  *zap.Logger
}

// NewObserver creates an observer with no session.
func NewObserver(logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		subs:   map[uint64]func(model.AuthEvent){},
		logger: logger,
	}
}

// CurrentSession returns the current session, if any.
func (o *Observer) CurrentSession() (*model.Session, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current, o.current != nil
}

// Subscribe registers fn for every subsequent event. The returned function
// cancels the subscription; calling it more than once is harmless.
func (o *Observer) Subscribe(fn func(model.AuthEvent)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (o *Observer) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

// Publish records an event from the identity provider and fans it out.
// Subscribers are called outside the lock, in registration order.
func (o *Observer) Publish(e model.AuthEvent) {
	o.mu.Lock()
	if e.Type == model.AuthEventSignedOut {
		o.current = nil
	} else {
		o.current = e.Session
	}
	ids := make([]uint64, 0, len(o.subs))
	for id := range o.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(model.AuthEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.subs[id])
	}
	o.mu.Unlock()

	o.logger.Debug("Auth state changed", zap.String("event", string(e.Type)), zap.Int("subscribers", len(fns)))
	for _, fn := range fns {
		fn(e)
	}
}

// Fixed is a provider that always reports the same session.
type Fixed struct {
	s *model.Session
}

// NewFixed returns a provider for s; a nil s means unauthenticated.
func NewFixed(s *model.Session) Fixed {
	return Fixed{s: s}
}

func (f Fixed) CurrentSession() (*model.Session, bool) {
	return f.s, f.s != nil
}
