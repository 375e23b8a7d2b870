package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/user"
)

type fakeVerifier struct {
	id        *IdentityStatus
	idErr     error
	access    *gym.AccessResult
	accessErr error

	userCalls, accessCalls int
	logouts                int
	logoutErr              error
}

func (f *fakeVerifier) VerifyUser(context.Context) (*IdentityStatus, error) {
	f.userCalls++
	return f.id, f.idErr
}

func (f *fakeVerifier) VerifyGymAccess(context.Context) (*gym.AccessResult, error) {
	f.accessCalls++
	return f.access, f.accessErr
}

func (f *fakeVerifier) Logout(context.Context) error {
	f.logouts++
	return f.logoutErr
}

var (
	signedIn   = &IdentityStatus{Authenticated: true, User: &user.Identity{UID: "u1", Email: "admin@example.com"}}
	authorized = &gym.AccessResult{
		Authorized:   true,
		Organization: &gym.Organization{ID: "org1", Name: "Iron Works"},
		UserGyms:     []gym.Gym{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}},
		AllGyms:      []gym.Gym{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}, {ID: "g3", Name: "Harbor"}},
	}
)

func TestGate(t *testing.T) {
	tests := []struct {
		name        string
		v           *fakeVerifier
		want        State
		reason      string
		transitions []State
		accessCalls int
	}{
		{
			name:        "no session",
			v:           &fakeVerifier{idErr: ErrNoSession},
			want:        SignInRequired,
			transitions: []State{Initializing, VerifyingIdentity, SignInRequired},
		},
		{
			name:        "not authenticated",
			v:           &fakeVerifier{id: &IdentityStatus{Authenticated: false}},
			want:        SignInRequired,
			transitions: []State{Initializing, VerifyingIdentity, SignInRequired},
		},
		{
			name:        "identity check unreachable",
			v:           &fakeVerifier{idErr: errors.New("connection refused")},
			want:        Denied,
			reason:      GenericDenial,
			transitions: []State{Initializing, VerifyingIdentity, Denied},
		},
		{
			name:        "identity check server error",
			v:           &fakeVerifier{idErr: &APIError{Status: 500}},
			want:        Denied,
			reason:      GenericDenial,
			transitions: []State{Initializing, VerifyingIdentity, Denied},
		},
		{
			name:        "not registered",
			v:           &fakeVerifier{id: signedIn, access: &gym.AccessResult{Error: gym.DenialNoGym}},
			want:        Denied,
			reason:      gym.DenialNoGym,
			transitions: []State{Initializing, VerifyingIdentity, VerifyingAccess, Denied},
			accessCalls: 1,
		},
		{
			name:        "denied without reason",
			v:           &fakeVerifier{id: signedIn, access: &gym.AccessResult{}},
			want:        Denied,
			reason:      gym.DenialNoGym,
			transitions: []State{Initializing, VerifyingIdentity, VerifyingAccess, Denied},
			accessCalls: 1,
		},
		{
			name:        "access check fails",
			v:           &fakeVerifier{id: signedIn, accessErr: errors.New("bad gateway")},
			want:        Denied,
			reason:      GenericDenial,
			transitions: []State{Initializing, VerifyingIdentity, VerifyingAccess, Denied},
			accessCalls: 1,
		},
		{
			name:        "authorized",
			v:           &fakeVerifier{id: signedIn, access: authorized},
			want:        Authorized,
			transitions: []State{Initializing, VerifyingIdentity, VerifyingAccess, Authorized},
			accessCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.v)
			d := g.Run(context.Background())
			if d.State != tt.want {
				t.Fatalf("want %v, got %v", tt.want, d.State)
			}
			if d.Reason != tt.reason {
				t.Errorf("reason: want %q, got %q", tt.reason, d.Reason)
			}
			if d.State == Denied && !d.OfferSignOut {
				t.Error("denied screen should offer sign out")
			}
			if got := g.Transitions(); !reflect.DeepEqual(got, tt.transitions) {
				t.Errorf("transitions: want %v, got %v", tt.transitions, got)
			}
			if tt.v.accessCalls != tt.accessCalls {
				t.Errorf("access calls: want %d, got %d", tt.accessCalls, tt.v.accessCalls)
			}
			if !g.State().Final() {
				t.Errorf("gate should end in a final state, got %v", g.State())
			}
		})
	}
}

func TestGate_RunsOnce(t *testing.T) {
	v := &fakeVerifier{idErr: errors.New("timeout")}
	g := NewGate(v)
	first := g.Run(context.Background())

	v.idErr = nil
	v.id, v.access = signedIn, authorized
	second := g.Run(context.Background())

	if first.State != Denied || second.State != Denied {
		t.Errorf("a decided gate must not change, got %v then %v", first.State, second.State)
	}
	if v.userCalls != 1 {
		t.Errorf("expected one identity check, got %d", v.userCalls)
	}
	if n := len(g.Transitions()); n != 3 {
		t.Errorf("no state may be re-entered, transitions %v", g.Transitions())
	}
}

func TestInitAndTeardown(t *testing.T) {
	ctx := context.Background()

	if _, err := Init(ctx, &fakeVerifier{idErr: ErrNoSession}); !errors.Is(err, ErrSignInRequired) {
		t.Errorf("expected ErrSignInRequired, got %v", err)
	}
	_, err := Init(ctx, &fakeVerifier{id: signedIn, access: &gym.AccessResult{Error: gym.DenialNoGym}})
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != gym.DenialNoGym {
		t.Errorf("expected denied error, got %v", err)
	}

	v := &fakeVerifier{id: signedIn, access: authorized, logoutErr: errors.New("offline")}
	s, err := Init(ctx, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OrganizationID() != "org1" || len(s.GymIDs()) != 2 || len(s.AllGyms()) != 3 {
		t.Errorf("unexpected scope: org %s gyms %v", s.OrganizationID(), s.GymIDs())
	}
	if s.GymName("g2") != "Uptown" || s.GymName("g3") != "" {
		t.Errorf("GymName should only know the caller's gyms")
	}

	s.Teardown(ctx)
	s.Teardown(ctx)
	if v.logouts != 1 {
		t.Errorf("expected one logout, got %d", v.logouts)
	}
	if !s.Closed() || len(s.GymIDs()) != 0 || s.OrganizationID() != "" {
		t.Errorf("teardown should clear the scope")
	}
}
