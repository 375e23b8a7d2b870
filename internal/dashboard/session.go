package dashboard

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/user"
)

// SessionAPI is what a session needs from the backend.
type SessionAPI interface {
	Verifier
	Logout(ctx context.Context) error
}

// Session is the authorized scope the panels work in. It exists only after
// the gate authorized the caller.
type Session struct {
	api SessionAPI

	mu           sync.RWMutex
	identity     user.Identity
	organization gym.Organization
	userGyms     []gym.Gym
	allGyms      []gym.Gym
	profile      *user.Profile
	closed       bool
}

// Init runs the gate. It returns ErrSignInRequired or a *DeniedError when
// the dashboard may not be shown.
func Init(ctx context.Context, api SessionAPI) (*Session, error) {
	s, _, err := InitWithGate(ctx, api, NewGate(api))
	return s, err
}

// InitWithGate is Init with a caller-owned gate, so its transitions can be
// inspected.
func InitWithGate(ctx context.Context, api SessionAPI, g *Gate) (*Session, Decision, error) {
	d := g.Run(ctx)
	switch d.State {
	case Authorized:
	case SignInRequired:
		return nil, d, ErrSignInRequired
	default:
		return nil, d, &DeniedError{Reason: d.Reason}
	}
	return &Session{
		api:          api,
		identity:     *d.Identity,
		organization: *d.Access.Organization,
		userGyms:     append([]gym.Gym(nil), d.Access.UserGyms...),
		allGyms:      append([]gym.Gym(nil), d.Access.AllGyms...),
		profile:      d.Access.UserData,
	}, d, nil
}

func (s *Session) Identity() user.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Session) Profile() *user.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Session) OrganizationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.organization.ID
}

func (s *Session) Organization() gym.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.organization
}

// UserGyms are the gyms the caller administers; every fetch is scoped to
// them.
func (s *Session) UserGyms() []gym.Gym {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]gym.Gym(nil), s.userGyms...)
}

// AllGyms are every gym of the organization, for display only.
func (s *Session) AllGyms() []gym.Gym {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]gym.Gym(nil), s.allGyms...)
}

func (s *Session) GymIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.userGyms))
	for _, g := range s.userGyms {
		out = append(out, g.ID)
	}
	return out
}

// GymName returns the name of one of the caller's gyms, or "".
func (s *Session) GymName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.userGyms {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Teardown signs out and clears the scope. The logout request is best
// effort; the local scope is cleared either way.
func (s *Session) Teardown(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.userGyms = nil
	s.allGyms = nil
	s.profile = nil
	s.organization = gym.Organization{}
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		log.Printf("[session] logout failed: %v", err)
	}
}

// Refresher is a panel that can re-fetch its data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshAll refreshes panels concurrently and returns the first error.
// A failing panel does not stop the others.
func RefreshAll(ctx context.Context, panels ...Refresher) error {
	var g errgroup.Group
	for _, p := range panels {
		g.Go(func() error { return p.Refresh(ctx) })
	}
	return g.Wait()
}
