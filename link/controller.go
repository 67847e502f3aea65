package link

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
)

// State is the widget controller's position in a linking attempt.
type State int

const (
	// StateIdle: no link token yet.
	StateIdle State = iota
	// StateReady: token received, widget not yet opened.
	StateReady
	// StateOpened: widget UI active, user interacting.
	StateOpened
	// StateSucceeded: terminal; the widget produced a public token and the
	// exchange was dispatched exactly once.
	StateSucceeded
	// StateExited: terminal; user cancelled or the widget errored. No
	// exchange is ever made from here.
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateOpened:
		return "opened"
	case StateSucceeded:
		return "succeeded"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt is finished. A terminal controller
// holds no token; a new attempt needs a fresh grant and a fresh controller.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateExited
}

// ExchangeFunc performs the server-side public token exchange and returns
// the linked item ID.
type ExchangeFunc func(ctx context.Context, publicToken string) (itemID string, err error)

// Result is delivered once, on the terminal transition.
type Result struct {
	State  State
	ItemID string // set on Succeeded with a successful exchange
	Err    error  // widget exit error, or exchange failure
}

// Controller drives one linking attempt through
// Idle -> Ready -> Opened -> {Succeeded, Exited}. It is event-driven and
// safe to call from multiple goroutines, but models a single cooperative
// flow: duplicate opens are ignored, the exchange is dispatched exactly
// once per attempt, and terminal events arriving after Teardown are
// dropped without scheduling any work.
type Controller struct {
	mu       sync.Mutex
	state    State
	grant    *domain.LinkTokenGrant
	tornDown bool

	store    TokenStore
	exchange ExchangeFunc
	onResult func(Result)

	done chan struct{}
}

// NewController wires a controller to the token store it must clear on any
// terminal transition. onResult may be nil.
func NewController(store TokenStore, exchange ExchangeFunc, onResult func(Result)) *Controller {
	return &Controller{
		state:    StateIdle,
		store:    store,
		exchange: exchange,
		onResult: onResult,
		done:     make(chan struct{}),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed on the terminal transition.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// HandleToken moves Idle -> Ready when a grant becomes available. Tokens
// arriving in any other state are ignored: a finished controller is never
// restarted with a new token.
func (c *Controller) HandleToken(ctx context.Context, grant *domain.LinkTokenGrant) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tornDown || c.state != StateIdle {
		log.Ctx(ctx).Debug().
			Stringer("state", c.state).
			Msg("link token ignored outside idle state")
		return
	}

	c.grant = grant
	c.state = StateReady
	log.Ctx(ctx).Debug().
		Str("attempt_id", grant.AttemptID).
		Str("link_token_hash", claritycash.HashToken(grant.LinkToken)).
		Msg("link controller ready")
}

// HandleOpen moves Ready -> Opened when the widget reports it can render.
// Repeated open triggers while already Opened are ignored, which is the
// debounce against rapid repeated user action.
func (c *Controller) HandleOpen(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tornDown || c.state != StateReady {
		return
	}
	c.state = StateOpened
	log.Ctx(ctx).Debug().Str("attempt_id", c.grant.AttemptID).Msg("link widget opened")
}

// HandleSuccess consumes the widget success event. The transition to
// Succeeded happens exactly once; the exchange call is dispatched on that
// transition and never again, no matter how often the transport retries
// the event. The exchange runs on a context detached from the caller so a
// consumer disappearing mid-call cannot lose the credential.
func (c *Controller) HandleSuccess(ctx context.Context, publicToken string) {
	c.mu.Lock()
	if c.tornDown || c.state != StateOpened {
		log.Ctx(ctx).Debug().
			Stringer("state", c.state).
			Bool("torn_down", c.tornDown).
			Msg("duplicate or late success event ignored")
		c.mu.Unlock()
		return
	}
	attemptID := c.grant.AttemptID
	c.finishLocked(ctx, StateSucceeded)
	c.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("attempt_id", attemptID).
		Str("public_token_hash", claritycash.HashToken(publicToken)).
		Msg("link succeeded, exchanging public token")

	itemID, err := c.exchange(context.WithoutCancel(ctx), publicToken)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("attempt_id", attemptID).
			Msg("public token exchange failed")
	}
	c.deliver(Result{State: StateSucceeded, ItemID: itemID, Err: err})
}

// HandleExit consumes the widget exit event (user cancel or widget error).
// No exchange call is made and the public token is never produced.
func (c *Controller) HandleExit(ctx context.Context, exitErr error) {
	c.mu.Lock()
	if c.tornDown || c.state.Terminal() || c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.finishLocked(ctx, StateExited)
	c.mu.Unlock()

	if exitErr != nil {
		log.Ctx(ctx).Warn().Err(exitErr).Msg("link widget exited with error")
	} else {
		log.Ctx(ctx).Debug().Msg("link widget exited")
	}
	c.deliver(Result{State: StateExited, Err: exitErr})
}

// Teardown detaches the consumer. Terminal events arriving afterwards are
// no-ops; an exchange already in flight still completes and persists.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tornDown = true
	c.onResult = nil
}

// finishLocked performs the shared terminal bookkeeping: the controller
// forgets its token and the store is cleared unconditionally.
func (c *Controller) finishLocked(ctx context.Context, terminal State) {
	c.state = terminal
	c.grant = nil
	if err := c.store.Clear(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to clear link token store")
	}
	close(c.done)
}

func (c *Controller) deliver(result Result) {
	c.mu.Lock()
	callback := c.onResult
	c.mu.Unlock()

	if callback != nil {
		callback(result)
	}
}
