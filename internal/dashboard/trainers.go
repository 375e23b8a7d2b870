package dashboard

import (
	"context"

	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type TrainerAPI interface {
	ListTrainers(ctx context.Context, orgID string, gymIDs []string) ([]trainer.Trainer, []scope.Failure, error)
	CreateTrainer(ctx context.Context, orgID, gymID string, in trainer.Input) (*trainer.Trainer, error)
	UpdateTrainer(ctx context.Context, orgID, gymID, id string, in trainer.Input) (*trainer.Trainer, error)
	DeleteTrainer(ctx context.Context, orgID, gymID, id string) error
}

// TrainerFilter narrows the trainer list. Empty or "all" fields match
// everything.
type TrainerFilter struct {
	Search string
	GymID  string
	Status string
}

func (f TrainerFilter) Match(t trainer.Trainer) bool {
	return utils.ContainsFold(f.Search, t.Name, t.Email, t.Specialization) &&
		matchAll(f.GymID, t.GymID) &&
		matchAll(f.Status, t.Status)
}

type TrainerPanel struct {
	s    *Session
	api  TrainerAPI
	list list[trainer.Trainer]
}

func NewTrainerPanel(s *Session, api TrainerAPI) *TrainerPanel {
	return &TrainerPanel{s: s, api: api}
}

// Refresh re-fetches trainers of every gym in the session.
func (p *TrainerPanel) Refresh(ctx context.Context) error {
	gen := p.list.begin()
	items, failed, err := p.api.ListTrainers(ctx, p.s.OrganizationID(), p.s.GymIDs())
	if err != nil {
		return &OperationError{Op: "fetch trainers", Err: err}
	}
	p.list.apply(gen, items, failed)
	return nil
}

func (p *TrainerPanel) All() []trainer.Trainer { return p.list.snapshot() }

// Failures lists gyms whose trainers could not be fetched last time.
func (p *TrainerPanel) Failures() []scope.Failure { return p.list.failures() }

func (p *TrainerPanel) List(f TrainerFilter) []trainer.Trainer {
	return p.list.filter(f.Match)
}

func (p *TrainerPanel) Find(id string) (trainer.Trainer, bool) {
	for _, t := range p.list.snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return trainer.Trainer{}, false
}

func (p *TrainerPanel) Create(ctx context.Context, in trainer.Input) (*trainer.Trainer, error) {
	out, err := p.api.CreateTrainer(ctx, p.s.OrganizationID(), in.GymID, in)
	if err != nil {
		return nil, &OperationError{Op: "create trainer", Err: err}
	}
	return out, p.Refresh(ctx)
}

// Update overwrites cur with in. Setting in.GymID to another gym moves the
// trainer.
func (p *TrainerPanel) Update(ctx context.Context, cur trainer.Trainer, in trainer.Input) (*trainer.Trainer, error) {
	if in.GymID == "" {
		in.GymID = cur.GymID
	}
	out, err := p.api.UpdateTrainer(ctx, p.s.OrganizationID(), cur.GymID, cur.ID, in)
	if err != nil {
		return nil, &OperationError{Op: "update trainer", Err: err}
	}
	return out, p.Refresh(ctx)
}

// Delete asks confirm first; a declined confirmation sends nothing and
// returns false.
func (p *TrainerPanel) Delete(ctx context.Context, t trainer.Trainer, confirm func(trainer.Trainer) bool) (bool, error) {
	if confirm != nil && !confirm(t) {
		return false, nil
	}
	if err := p.api.DeleteTrainer(ctx, p.s.OrganizationID(), t.GymID, t.ID); err != nil {
		return false, &OperationError{Op: "delete trainer", Err: err}
	}
	return true, p.Refresh(ctx)
}

// MembersOf returns the members assigned to trainerID.
func MembersOf(members []member.Member, trainerID string) []member.Member {
	out := []member.Member{}
	for _, m := range members {
		if trainerID != "" && m.AssignedTrainer == trainerID {
			out = append(out, m)
		}
	}
	return out
}

// UnassignedMembers returns members of gymID without a trainer.
func UnassignedMembers(members []member.Member, gymID string) []member.Member {
	out := []member.Member{}
	for _, m := range members {
		if m.AssignedTrainer == "" && matchAll(gymID, m.GymID) {
			out = append(out, m)
		}
	}
	return out
}
