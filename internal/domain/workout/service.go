package workout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gym-manager/backend/internal/utils"
)

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// GetOrCreatePlan returns the trainer's plan for a member, creating an
// empty one on first use.
func (s *Service) GetOrCreatePlan(ctx context.Context, orgID, gymID, trainerID, memberID string) (*Plan, error) {
	for _, v := range []string{orgID, gymID, trainerID, memberID} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: organizationId, gymId, trainerId and userId are required", ErrBadRequest)
		}
	}

	p, err := s.store.FindPlan(ctx, orgID, gymID, trainerID, memberID)
	if err == nil {
		if p.Entries == nil {
			p.Entries = []Entry{}
		}
		return p, nil
	}
	if !IsErrNotFound(err) {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	now := s.now()
	p = &Plan{
		ID:             s.newID(),
		OrganizationID: orgID,
		GymID:          gymID,
		TrainerID:      trainerID,
		MemberID:       memberID,
		Entries:        []Entry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreatePlan(ctx, *p); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return p, nil
}

// Plan loads a plan by id.
func (s *Service) Plan(ctx context.Context, planID string) (*Plan, error) {
	if _, err := uuid.Parse(planID); err != nil {
		return nil, fmt.Errorf("%w: invalid planId", ErrBadRequest)
	}
	return s.store.GetPlan(ctx, planID)
}

// AddEntry saves an exercise into a slot. A second add of the same
// exercise to the same slot reports ErrAlreadyExists and changes nothing.
func (s *Service) AddEntry(ctx context.Context, in AutoSaveInput) (*Entry, error) {
	if msg := utils.Validate(in); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	e, err := normalizeEntry(in.DayName, in.MuscleID, in.ExerciseID)
	if err != nil {
		return nil, err
	}
	e.Position = in.Position

	err = s.store.Mutate(ctx, in.PlanID, func(p *Plan) (bool, error) {
		for _, x := range p.Entries {
			if x.sameSlot(e) {
				return false, fmt.Errorf("%w: exercise already in this slot", ErrAlreadyExists)
			}
		}
		p.Entries = append(p.Entries, e)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RemoveEntry deletes an exercise from a slot. Removing an entry that is
// not there reports ErrNotFound.
func (s *Service) RemoveEntry(ctx context.Context, planID, day string, muscleID, exerciseID int) error {
	if _, err := uuid.Parse(planID); err != nil {
		return fmt.Errorf("%w: invalid planId", ErrBadRequest)
	}
	e, err := normalizeEntry(day, muscleID, exerciseID)
	if err != nil {
		return err
	}

	return s.store.Mutate(ctx, planID, func(p *Plan) (bool, error) {
		kept := p.Entries[:0]
		removed := false
		for _, x := range p.Entries {
			if x.sameSlot(e) {
				removed = true
				continue
			}
			kept = append(kept, x)
		}
		if !removed {
			return false, fmt.Errorf("%w: exercise not in this slot", ErrNotFound)
		}
		p.Entries = kept
		return true, nil
	})
}

func normalizeEntry(day string, muscleID, exerciseID int) (Entry, error) {
	d, ok := CanonicalDay(day)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown day %q", ErrBadRequest, day)
	}
	if _, ok := FindMuscle(muscleID); !ok {
		return Entry{}, fmt.Errorf("%w: unknown muscle group %d", ErrBadRequest, muscleID)
	}
	if _, ok := FindExercise(exerciseID); !ok {
		return Entry{}, fmt.Errorf("%w: unknown exercise %d", ErrBadRequest, exerciseID)
	}
	return Entry{DayName: d, MuscleID: muscleID, ExerciseID: exerciseID}, nil
}
