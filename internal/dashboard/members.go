package dashboard

import (
	"context"

	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type MemberAPI interface {
	ListMembers(ctx context.Context, orgID string, gymIDs []string) ([]member.Member, []scope.Failure, error)
	CreateMember(ctx context.Context, orgID, gymID string, in member.Input) (*member.Member, error)
	UpdateMember(ctx context.Context, orgID, gymID, id string, in member.Input) (*member.Member, error)
	DeleteMember(ctx context.Context, orgID, gymID, id string) error
	AssignTrainer(ctx context.Context, orgID, gymID, memberID, trainerID string) error
}

type MemberFilter struct {
	Search         string
	GymID          string
	Status         string
	MembershipType string
}

func (f MemberFilter) Match(m member.Member) bool {
	return utils.ContainsFold(f.Search, m.Name, m.Email) &&
		matchAll(f.GymID, m.GymID) &&
		matchAll(f.Status, m.Status) &&
		matchAll(f.MembershipType, m.MembershipType)
}

type MemberPanel struct {
	s    *Session
	api  MemberAPI
	list list[member.Member]
}

func NewMemberPanel(s *Session, api MemberAPI) *MemberPanel {
	return &MemberPanel{s: s, api: api}
}

func (p *MemberPanel) Refresh(ctx context.Context) error {
	gen := p.list.begin()
	items, failed, err := p.api.ListMembers(ctx, p.s.OrganizationID(), p.s.GymIDs())
	if err != nil {
		return &OperationError{Op: "fetch members", Err: err}
	}
	p.list.apply(gen, items, failed)
	return nil
}

func (p *MemberPanel) All() []member.Member       { return p.list.snapshot() }
func (p *MemberPanel) Failures() []scope.Failure { return p.list.failures() }

func (p *MemberPanel) List(f MemberFilter) []member.Member {
	return p.list.filter(f.Match)
}

func (p *MemberPanel) Find(id string) (member.Member, bool) {
	for _, m := range p.list.snapshot() {
		if m.ID == id {
			return m, true
		}
	}
	return member.Member{}, false
}

func (p *MemberPanel) Create(ctx context.Context, in member.Input) (*member.Member, error) {
	out, err := p.api.CreateMember(ctx, p.s.OrganizationID(), in.GymID, in)
	if err != nil {
		return nil, &OperationError{Op: "create member", Err: err}
	}
	return out, p.Refresh(ctx)
}

func (p *MemberPanel) Update(ctx context.Context, cur member.Member, in member.Input) (*member.Member, error) {
	if in.GymID == "" {
		in.GymID = cur.GymID
	}
	out, err := p.api.UpdateMember(ctx, p.s.OrganizationID(), cur.GymID, cur.ID, in)
	if err != nil {
		return nil, &OperationError{Op: "update member", Err: err}
	}
	return out, p.Refresh(ctx)
}

func (p *MemberPanel) Delete(ctx context.Context, m member.Member, confirm func(member.Member) bool) (bool, error) {
	if confirm != nil && !confirm(m) {
		return false, nil
	}
	if err := p.api.DeleteMember(ctx, p.s.OrganizationID(), m.GymID, m.ID); err != nil {
		return false, &OperationError{Op: "delete member", Err: err}
	}
	return true, p.Refresh(ctx)
}

// Assign sets or, with an empty trainerID, clears the member's trainer.
func (p *MemberPanel) Assign(ctx context.Context, m member.Member, trainerID string) error {
	if err := p.api.AssignTrainer(ctx, p.s.OrganizationID(), m.GymID, m.ID, trainerID); err != nil {
		return &OperationError{Op: "assign trainer", Err: err}
	}
	return p.Refresh(ctx)
}

// EligibleTrainers are the active trainers of the member's gym.
func EligibleTrainers(trainers []trainer.Trainer, m member.Member) []trainer.Trainer {
	out := []trainer.Trainer{}
	for _, t := range trainers {
		if t.GymID == m.GymID && t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}
