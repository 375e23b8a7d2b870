package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrBadRequest = errors.New("bad request")

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListScoped returns the organization's devices assigned to one of gymIDs.
func (s *Service) ListScoped(ctx context.Context, orgID string, gymIDs []string) ([]Device, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	allowed := make(map[string]bool, len(gymIDs))
	for _, id := range gymIDs {
		allowed[id] = true
	}

	all, err := s.store.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	out := []Device{}
	for _, d := range all {
		// stores are not required to filter by organization
		if d.OrganizationID != orgID || !allowed[d.GymID] {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
