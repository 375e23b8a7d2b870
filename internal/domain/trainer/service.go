package trainer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type Service struct {
	store Store
	limit int
	now   func() time.Time
}

func NewService(store Store, concurrency int) *Service {
	return &Service{
		store: store,
		limit: concurrency,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List gathers the trainers of every gym in scope, tagged with their gym.
func (s *Service) List(ctx context.Context, orgID string, gyms []scope.Ref) (scope.Result[Trainer], error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return scope.Result[Trainer]{}, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	return scope.Gather(ctx, gyms, s.limit,
		func(ctx context.Context, g scope.Ref) ([]Trainer, error) {
			return s.store.List(ctx, orgID, g.ID)
		},
		func(t Trainer, g scope.Ref) Trainer {
			t.GymID = g.ID
			t.GymName = g.Name
			return t
		},
	), nil
}

func (s *Service) Get(ctx context.Context, orgID, gymID, id string) (*Trainer, error) {
	if err := requireKeys(orgID, gymID, id); err != nil {
		return nil, err
	}
	t, err := s.store.Get(ctx, orgID, gymID, id)
	if err != nil {
		if IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: trainer not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, orgID string, in Input) (*Trainer, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}

	t, err := s.store.Create(ctx, orgID, New(in, s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create trainer: %w", err)
	}
	return t, nil
}

// Update overwrites every field of an existing trainer.
func (s *Service) Update(ctx context.Context, orgID, gymID, id string, in Input) (*Trainer, error) {
	if err := requireKeys(orgID, gymID, id); err != nil {
		return nil, err
	}
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}

	cur, err := s.Get(ctx, orgID, gymID, id)
	if err != nil {
		return nil, err
	}

	t := New(in, s.now())
	t.ID = id
	t.CreatedAt = cur.CreatedAt
	if err := s.store.Replace(ctx, orgID, gymID, t); err != nil {
		if IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: trainer not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update trainer: %w", err)
	}
	return &t, nil
}

func (s *Service) Delete(ctx context.Context, orgID, gymID, id string) error {
	if err := requireKeys(orgID, gymID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, orgID, gymID, id); err != nil {
		if IsErrNotFound(err) {
			return fmt.Errorf("%w: trainer not found", ErrNotFound)
		}
		return fmt.Errorf("failed to delete trainer: %w", err)
	}
	return nil
}

func requireKeys(orgID, gymID, id string) error {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(gymID) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: organizationId, gymId and id are required", ErrBadRequest)
	}
	return nil
}
