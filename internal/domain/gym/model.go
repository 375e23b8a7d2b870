package gym

import (
	"fmt"
	"strings"
	"time"

	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/scope"
)

// DenialNoGym is returned to callers whose email is not an admin of any gym.
const DenialNoGym = "Your email is not registered in any gym."

type Organization struct {
	ID        string    `firestore:"id" json:"id"`
	Name      string    `firestore:"name" json:"name"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Gym lives at organizations/{org}/gyms/{gym}.
type Gym struct {
	ID             string    `firestore:"id" json:"id"`
	Name           string    `firestore:"name" json:"name"`
	OrganizationID string    `firestore:"organizationId" json:"organizationId"`
	AdminEmails    []string  `firestore:"adminEmails,omitempty" json:"-"`
	CreatedAt      time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt      time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (g Gym) Ref() scope.Ref { return scope.Ref{ID: g.ID, Name: g.Name} }

// AccessResult is the answer of the access check. It is derived per
// request and never persisted.
type AccessResult struct {
	Authorized   bool          `json:"authorized"`
	Organization *Organization `json:"organization,omitempty"`
	UserGyms     []Gym         `json:"userGyms"`
	AllGyms      []Gym         `json:"allGyms"`
	UserData     *user.Profile `json:"userData,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Refs returns the caller's gyms as scope references.
func (a AccessResult) Refs() []scope.Ref {
	out := make([]scope.Ref, 0, len(a.UserGyms))
	for _, g := range a.UserGyms {
		out = append(out, g.Ref())
	}
	return out
}

// Scope resolves requested gym ids into named references. Every id must be
// one of the caller's gyms in orgID; no ids means all of them.
func (a AccessResult) Scope(orgID string, gymIDs []string) ([]scope.Ref, error) {
	if !a.Authorized || a.Organization == nil {
		return nil, fmt.Errorf("%w: no gym access", ErrForbidden)
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	if orgID != a.Organization.ID {
		return nil, fmt.Errorf("%w: organization %s is not yours", ErrForbidden, orgID)
	}
	if len(gymIDs) == 0 {
		return a.Refs(), nil
	}

	byID := make(map[string]Gym, len(a.UserGyms))
	for _, g := range a.UserGyms {
		byID[g.ID] = g
	}
	out := make([]scope.Ref, 0, len(gymIDs))
	for _, id := range gymIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		g, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: gym %s is not in your scope", ErrForbidden, id)
		}
		out = append(out, g.Ref())
	}
	return out, nil
}

type RegisterAdminInput struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	GymID          string `json:"gymId" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
}

func (in *RegisterAdminInput) Trim() {
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	in.GymID = strings.TrimSpace(in.GymID)
	in.Email = NormalizeEmail(in.Email)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
