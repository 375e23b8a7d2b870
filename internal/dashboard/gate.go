package dashboard

import (
	"context"
	"errors"
	"log"
	"sync"

	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/user"
)

// GenericDenial is shown when a check fails for any reason other than a
// definite "not authorized" answer.
const GenericDenial = "Unable to verify your access. Please try again."

type State int

const (
	Initializing State = iota
	VerifyingIdentity
	VerifyingAccess
	Authorized
	Denied
	SignInRequired
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case VerifyingIdentity:
		return "verifying-identity"
	case VerifyingAccess:
		return "verifying-access"
	case Authorized:
		return "authorized"
	case Denied:
		return "denied"
	case SignInRequired:
		return "sign-in-required"
	}
	return "unknown"
}

// Final reports whether the gate stops in s.
func (s State) Final() bool {
	return s == Authorized || s == Denied || s == SignInRequired
}

// Verifier runs the two checks of the gate.
type Verifier interface {
	VerifyUser(ctx context.Context) (*IdentityStatus, error)
	VerifyGymAccess(ctx context.Context) (*gym.AccessResult, error)
}

// Decision is the outcome of the gate.
type Decision struct {
	State    State
	Reason   string
	Identity *user.Identity
	Access   *gym.AccessResult
	// OfferSignOut is set on the denied screen.
	OfferSignOut bool
}

// Gate decides whether the dashboard may be shown. There is no retry: once
// decided it never verifies again.
type Gate struct {
	v    Verifier
	once sync.Once

	mu          sync.Mutex
	state       State
	transitions []State
	decision    *Decision
}

func NewGate(v Verifier) *Gate {
	return &Gate{v: v, state: Initializing, transitions: []State{Initializing}}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Transitions lists every state entered, in order.
func (g *Gate) Transitions() []State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]State(nil), g.transitions...)
}

func (g *Gate) enter(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.transitions = append(g.transitions, s)
}

func (g *Gate) finish(d Decision) Decision {
	g.enter(d.State)
	g.mu.Lock()
	g.decision = &d
	g.mu.Unlock()
	return d
}

// Run performs the checks on first call. Concurrent callers wait for the
// same decision.
func (g *Gate) Run(ctx context.Context) Decision {
	g.once.Do(func() { g.run(ctx) })
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.decision
}

func (g *Gate) run(ctx context.Context) Decision {
	g.enter(VerifyingIdentity)
	id, err := g.v.VerifyUser(ctx)
	switch {
	case errors.Is(err, ErrNoSession), IsStatus(err, 401):
		return g.finish(Decision{State: SignInRequired})
	case err != nil:
		log.Printf("[gate] identity check failed: %v", err)
		return g.finish(Decision{State: Denied, Reason: GenericDenial, OfferSignOut: true})
	case !id.Authenticated || id.User == nil:
		return g.finish(Decision{State: SignInRequired})
	}

	g.enter(VerifyingAccess)
	access, err := g.v.VerifyGymAccess(ctx)
	if err != nil {
		log.Printf("[gate] access check failed: %v", err)
		return g.finish(Decision{State: Denied, Reason: GenericDenial, Identity: id.User, OfferSignOut: true})
	}
	if !access.Authorized || access.Organization == nil {
		reason := access.Error
		if reason == "" {
			reason = gym.DenialNoGym
		}
		return g.finish(Decision{State: Denied, Reason: reason, Identity: id.User, Access: access, OfferSignOut: true})
	}
	return g.finish(Decision{State: Authorized, Identity: id.User, Access: access})
}
