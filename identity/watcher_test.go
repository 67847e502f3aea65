package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarity-cash/claritycash/domain"
)

func session(uid string) *domain.Session {
	return &domain.Session{
		Identity:  domain.UserIdentity{UID: uid, Email: uid + "@example.com"},
		IDToken:   "token-" + uid,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected session event: %+v", ev)
	default:
	}
}

func TestWatcher_SignInNotifies(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()
	defer cancel()

	w.Set(session("user-1"))

	ev := recvEvent(t, events)
	require.NotNil(t, ev.Current)
	assert.Equal(t, "user-1", ev.Current.Identity.UID)
	assert.Equal(t, "user-1", w.Current().Identity.UID)
}

func TestWatcher_SameUIDDoesNotRefire(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()
	defer cancel()

	w.Set(session("user-1"))
	recvEvent(t, events)

	// A token refresh replaces the session without a transition.
	refreshed := session("user-1")
	refreshed.IDToken = "token-refreshed"
	w.Set(refreshed)

	assertNoEvent(t, events)
	assert.Equal(t, "token-refreshed", w.Current().IDToken)
}

func TestWatcher_AccountSwitchNotifies(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()
	defer cancel()

	w.Set(session("user-1"))
	recvEvent(t, events)

	w.Set(session("user-2"))
	ev := recvEvent(t, events)
	require.NotNil(t, ev.Current)
	assert.Equal(t, "user-2", ev.Current.Identity.UID)
}

func TestWatcher_ClearNotifiesAndRunsHooks(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()
	defer cancel()

	hookRuns := 0
	w.OnSignOut(func() { hookRuns++ })

	w.Set(session("user-1"))
	recvEvent(t, events)

	w.Clear()
	ev := recvEvent(t, events)
	assert.Nil(t, ev.Current)
	assert.Equal(t, 1, hookRuns)
	assert.Nil(t, w.Current())
}

func TestWatcher_ClearWhileSignedOutIsNoOp(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()
	defer cancel()

	hookRuns := 0
	w.OnSignOut(func() { hookRuns++ })

	w.Clear()
	assertNoEvent(t, events)
	assert.Equal(t, 0, hookRuns)
}

func TestWatcher_SetNilClears(t *testing.T) {
	w := NewWatcher()
	hookRuns := 0
	w.OnSignOut(func() { hookRuns++ })

	w.Set(session("user-1"))
	w.Set(nil)

	assert.Nil(t, w.Current())
	assert.Equal(t, 1, hookRuns)
}

func TestWatcher_CancelStopsDelivery(t *testing.T) {
	w := NewWatcher()
	events, cancel := w.Subscribe()

	cancel()
	w.Set(session("user-1"))

	// The channel is closed on cancel; no event was published into it.
	_, open := <-events
	assert.False(t, open)
}
