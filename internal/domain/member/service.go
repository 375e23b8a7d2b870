package member

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

// TrainerLookup resolves the trainer a member is being assigned to.
type TrainerLookup interface {
	Get(ctx context.Context, orgID, gymID, id string) (*trainer.Trainer, error)
}

type Service struct {
	store    Store
	trainers TrainerLookup
	limit    int
	now      func() time.Time
}

func NewService(store Store, trainers TrainerLookup, concurrency int) *Service {
	return &Service{
		store:    store,
		trainers: trainers,
		limit:    concurrency,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List gathers members of every gym in scope.
func (s *Service) List(ctx context.Context, orgID string, gyms []scope.Ref) (scope.Result[Member], error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return scope.Result[Member]{}, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	return scope.Gather(ctx, gyms, s.limit,
		func(ctx context.Context, g scope.Ref) ([]Member, error) {
			return s.store.List(ctx, orgID, g.ID)
		},
		func(m Member, g scope.Ref) Member {
			m.GymID = g.ID
			m.GymName = g.Name
			return m
		},
	), nil
}

func (s *Service) Get(ctx context.Context, orgID, gymID, id string) (*Member, error) {
	if err := requireKeys(orgID, gymID, id); err != nil {
		return nil, err
	}
	m, err := s.store.Get(ctx, orgID, gymID, id)
	if err != nil {
		if IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, orgID string, in Input) (*Member, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	if err := s.checkTrainer(ctx, orgID, in.GymID, in.AssignedTrainer); err != nil {
		return nil, err
	}

	m, err := s.store.Create(ctx, orgID, New(in, s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return m, nil
}

// Update overwrites every field of an existing member.
func (s *Service) Update(ctx context.Context, orgID, gymID, id string, in Input) (*Member, error) {
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
	// an assignment that stays put is kept even if the trainer went inactive
	if in.AssignedTrainer != cur.AssignedTrainer || in.GymID != cur.GymID {
		if err := s.checkTrainer(ctx, orgID, in.GymID, in.AssignedTrainer); err != nil {
			return nil, err
		}
	}

	m := New(in, s.now())
	m.ID = id
	m.CreatedAt = cur.CreatedAt
	if err := s.store.Replace(ctx, orgID, gymID, m); err != nil {
		if IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return &m, nil
}

// AssignTrainer sets the member's trainer, or clears it when trainerID is
// empty. The trainer must be active and belong to the member's gym.
func (s *Service) AssignTrainer(ctx context.Context, memberID string, in AssignInput) error {
	if err := requireKeys(in.OrganizationID, in.GymID, memberID); err != nil {
		return err
	}
	trainerID := strings.TrimSpace(in.TrainerID)
	if err := s.checkTrainer(ctx, in.OrganizationID, in.GymID, trainerID); err != nil {
		return err
	}
	if err := s.store.SetAssignedTrainer(ctx, in.OrganizationID, in.GymID, memberID, trainerID); err != nil {
		if IsErrNotFound(err) {
			return fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return fmt.Errorf("failed to assign trainer: %w", err)
	}
	return nil
}

// ReleaseTrainer clears the assignment of every member of gymID assigned to
// trainerID and returns how many were cleared. Called once the trainer has
// left the gym.
func (s *Service) ReleaseTrainer(ctx context.Context, orgID, gymID, trainerID string) (int, error) {
	if err := requireKeys(orgID, gymID, trainerID); err != nil {
		return 0, err
	}
	members, err := s.store.List(ctx, orgID, gymID)
	if err != nil {
		return 0, fmt.Errorf("failed to list members: %w", err)
	}
	n := 0
	for _, m := range members {
		if m.AssignedTrainer != trainerID {
			continue
		}
		if err := s.store.SetAssignedTrainer(ctx, orgID, gymID, m.ID, ""); err != nil {
			if IsErrNotFound(err) {
				continue
			}
			return n, fmt.Errorf("failed to clear trainer of %s: %w", m.ID, err)
		}
		n++
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, orgID, gymID, id string) error {
	if err := requireKeys(orgID, gymID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, orgID, gymID, id); err != nil {
		if IsErrNotFound(err) {
			return fmt.Errorf("%w: member not found", ErrNotFound)
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

func (s *Service) checkTrainer(ctx context.Context, orgID, gymID, trainerID string) error {
	if trainerID == "" || s.trainers == nil {
		return nil
	}
	t, err := s.trainers.Get(ctx, orgID, gymID, trainerID)
	if err != nil {
		if trainer.IsErrNotFound(err) {
			return fmt.Errorf("%w: trainer %s is not in this gym", ErrBadRequest, trainerID)
		}
		return fmt.Errorf("failed to check trainer: %w", err)
	}
	if !t.IsActive() {
		return fmt.Errorf("%w: trainer %s is not active", ErrBadRequest, trainerID)
	}
	return nil
}

func requireKeys(orgID, gymID, id string) error {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(gymID) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: organizationId, gymId and id are required", ErrBadRequest)
	}
	return nil
}
