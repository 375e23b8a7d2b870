package gym

import (
	"context"
	"fmt"
	"sort"

	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/utils"
)

// ProfileReader loads the stored profile for a signed-in user.
type ProfileReader interface {
	Get(ctx context.Context, uid string) (*user.Profile, error)
}

type Service struct {
	store    Store
	profiles ProfileReader
}

func NewService(store Store, profiles ProfileReader) *Service {
	return &Service{store: store, profiles: profiles}
}

// VerifyAccess resolves which gyms the caller administers. A caller with no
// gym gets Authorized=false and a reason, not an error.
func (s *Service) VerifyAccess(ctx context.Context, uid, email string) (*AccessResult, error) {
	email = NormalizeEmail(email)
	if uid == "" || email == "" {
		return nil, fmt.Errorf("%w: signed-in user with an email is required", ErrUnauthorized)
	}

	gyms, err := s.store.GymsByAdminEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up gyms: %w", err)
	}
	if len(gyms) == 0 {
		return &AccessResult{Authorized: false, UserGyms: []Gym{}, AllGyms: []Gym{}, Error: DenialNoGym}, nil
	}

	// A caller may sit in more than one organization; the dashboard works
	// on one at a time, the lowest id wins.
	sort.SliceStable(gyms, func(i, j int) bool {
		if gyms[i].OrganizationID != gyms[j].OrganizationID {
			return gyms[i].OrganizationID < gyms[j].OrganizationID
		}
		return gyms[i].Name < gyms[j].Name
	})
	orgID := gyms[0].OrganizationID

	userGyms := []Gym{}
	for _, g := range gyms {
		if g.OrganizationID == orgID {
			userGyms = append(userGyms, g)
		}
	}

	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		if !IsErrNotFound(err) {
			return nil, fmt.Errorf("failed to load organization: %w", err)
		}
		org = &Organization{ID: orgID}
	}

	all, err := s.store.ListGyms(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gyms: %w", err)
	}

	res := &AccessResult{
		Authorized:   true,
		Organization: org,
		UserGyms:     userGyms,
		AllGyms:      all,
	}
	if s.profiles != nil {
		if p, err := s.profiles.Get(ctx, uid); err == nil {
			res.UserData = p
		}
	}
	return res, nil
}

// RegisterAdmin adds an email to a gym's admin list.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterAdminInput) error {
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	if err := s.store.AddAdminEmail(ctx, in.OrganizationID, in.GymID, in.Email); err != nil {
		if IsErrNotFound(err) {
			return fmt.Errorf("%w: gym not found", ErrNotFound)
		}
		return err
	}
	return nil
}
