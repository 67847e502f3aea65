package identity

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/clarity-cash/claritycash/domain"
)

// Event describes one actual session transition: signed-out to signed-in,
// signed-in to signed-out, or an account switch. Current is nil on
// sign-out.
type Event struct {
	Current *domain.Session
}

// Watcher holds the process-wide current session and notifies subscribers
// on transitions. It is single-writer multi-reader: Set and Clear are the
// only writers, subscribers observe through their own channels and must
// cancel on teardown.
//
// Re-publishing a session for the same uid (a token refresh, a render
// cycle) does not fire an event; subscribers see at most one event per
// actual transition.
type Watcher struct {
	mu      sync.Mutex
	current *domain.Session
	subs    map[int]chan Event
	nextID  int

	// signOutHooks run synchronously on every transition to signed-out.
	// The link token store registers itself here so a sign-out always
	// clears any pending link token.
	signOutHooks []func()
}

// NewWatcher creates an empty watcher: no session, no subscribers.
func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[int]chan Event)}
}

// Current returns the active session, or nil when signed out.
func (w *Watcher) Current() *domain.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Set installs a session. An account switch (different uid) counts as a
// transition; replacing a session for the same uid does not.
func (w *Watcher) Set(session *domain.Session) {
	if session == nil {
		w.Clear()
		return
	}

	w.mu.Lock()
	sameUser := w.current != nil && w.current.Identity.UID == session.Identity.UID
	w.current = session
	if sameUser {
		w.mu.Unlock()
		return
	}
	w.publishLocked(Event{Current: session})
	w.mu.Unlock()
}

// Clear signs the session out. A no-op when already signed out; otherwise
// subscribers are notified and the sign-out hooks run.
func (w *Watcher) Clear() {
	w.mu.Lock()
	if w.current == nil {
		w.mu.Unlock()
		return
	}
	w.current = nil
	w.publishLocked(Event{Current: nil})
	hooks := make([]func(), len(w.signOutHooks))
	copy(hooks, w.signOutHooks)
	w.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// Subscribe registers for session transitions. The cancel func must be
// called on consumer teardown; events delivered after cancel are dropped.
func (w *Watcher) Subscribe() (<-chan Event, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	ch := make(chan Event, 4)
	w.subs[id] = ch

	cancel := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// OnSignOut registers a hook run after every transition to signed-out.
func (w *Watcher) OnSignOut(hook func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signOutHooks = append(w.signOutHooks, hook)
}

func (w *Watcher) publishLocked(ev Event) {
	for id, ch := range w.subs {
		select {
		case ch <- ev:
		default:
			// A subscriber that stopped draining must not block the writer.
			log.Warn().Int("subscriber", id).Msg("session event dropped, subscriber not draining")
		}
	}
}
