package member

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
)

type mockStore struct {
	docs map[string]Member
	seq  int
}

func newMockStore() *mockStore { return &mockStore{docs: map[string]Member{}} }

func key(org, gym, id string) string { return org + "/" + gym + "/" + id }

func (m *mockStore) List(_ context.Context, orgID, gymID string) ([]Member, error) {
	out := []Member{}
	for k, v := range m.docs {
		if strings.HasPrefix(k, orgID+"/"+gymID+"/") {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockStore) Get(_ context.Context, orgID, gymID, id string) (*Member, error) {
	v, ok := m.docs[key(orgID, gymID, id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (m *mockStore) Create(_ context.Context, orgID string, v Member) (*Member, error) {
	m.seq++
	v.ID = fmt.Sprintf("m%d", m.seq)
	m.docs[key(orgID, v.GymID, v.ID)] = v
	return &v, nil
}

func (m *mockStore) Replace(_ context.Context, orgID, fromGymID string, v Member) error {
	from := key(orgID, fromGymID, v.ID)
	if _, ok := m.docs[from]; !ok {
		return ErrNotFound
	}
	delete(m.docs, from)
	m.docs[key(orgID, v.GymID, v.ID)] = v
	return nil
}

func (m *mockStore) SetAssignedTrainer(_ context.Context, orgID, gymID, id, trainerID string) error {
	k := key(orgID, gymID, id)
	v, ok := m.docs[k]
	if !ok {
		return ErrNotFound
	}
	v.AssignedTrainer = trainerID
	m.docs[k] = v
	return nil
}

func (m *mockStore) Delete(_ context.Context, orgID, gymID, id string) error {
	k := key(orgID, gymID, id)
	if _, ok := m.docs[k]; !ok {
		return ErrNotFound
	}
	delete(m.docs, k)
	return nil
}

type mockTrainers map[string]trainer.Trainer

func (m mockTrainers) Get(_ context.Context, orgID, gymID, id string) (*trainer.Trainer, error) {
	t, ok := m[key(orgID, gymID, id)]
	if !ok {
		return nil, fmt.Errorf("%w: trainer not found", trainer.ErrNotFound)
	}
	return &t, nil
}

func setup() (*Service, *mockStore) {
	st := newMockStore()
	trainers := mockTrainers{
		key("org1", "g1", "t1"): {ID: "t1", GymID: "g1", Status: trainer.StatusActive},
		key("org1", "g1", "t2"): {ID: "t2", GymID: "g1", Status: trainer.StatusInactive},
		key("org1", "g2", "t3"): {ID: "t3", GymID: "g2", Status: trainer.StatusActive},
	}
	svc := NewService(st, trainers, 4)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc, st
}

func validInput() Input {
	return Input{
		Name:             "Sam",
		Email:            "sam@example.com",
		Phone:            "555-0101",
		Age:              "29",
		Gender:           "female",
		GymID:            "g1",
		EmergencyContact: "Pat 555-0199",
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := setup()

	m, err := svc.Create(context.Background(), "org1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != StatusActive || m.MembershipType != MembershipBasic || m.AssignedTrainer != "" {
		t.Errorf("unexpected defaults: status=%q membership=%q trainer=%q", m.Status, m.MembershipType, m.AssignedTrainer)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setup()

	tests := []struct {
		name    string
		mutate  func(*Input)
		message string
	}{
		{"missing fields", func(in *Input) { in.Age = ""; in.EmergencyContact = "" }, "missing required fields: age, emergencyContact"},
		{"bad membership", func(in *Input) { in.MembershipType = "gold" }, "membershipType"},
		{"bad age", func(in *Input) { in.Age = "twenty" }, "age"},
		{"inactive trainer", func(in *Input) { in.AssignedTrainer = "t2" }, "not active"},
		{"trainer from other gym", func(in *Input) { in.AssignedTrainer = "t3" }, "not in this gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "org1", in)
			if !IsErrBadRequest(err) {
				t.Fatalf("expected bad request, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}

func TestAssignTrainer(t *testing.T) {
	svc, st := setup()
	ctx := context.Background()
	m, _ := svc.Create(ctx, "org1", validInput())

	if err := svc.AssignTrainer(ctx, m.ID, AssignInput{OrganizationID: "org1", GymID: "g1", TrainerID: "t1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := st.Get(ctx, "org1", "g1", m.ID)
	if got.AssignedTrainer != "t1" {
		t.Errorf("expected t1, got %q", got.AssignedTrainer)
	}

	if err := svc.AssignTrainer(ctx, m.ID, AssignInput{OrganizationID: "org1", GymID: "g1", TrainerID: "t3"}); !IsErrBadRequest(err) {
		t.Errorf("cross-gym assignment should be rejected, got %v", err)
	}

	if err := svc.AssignTrainer(ctx, m.ID, AssignInput{OrganizationID: "org1", GymID: "g1", TrainerID: ""}); err != nil {
		t.Fatalf("clearing should succeed: %v", err)
	}
	got, _ = st.Get(ctx, "org1", "g1", m.ID)
	if got.AssignedTrainer != "" {
		t.Errorf("expected cleared assignment, got %q", got.AssignedTrainer)
	}

	if err := svc.AssignTrainer(ctx, "ghost", AssignInput{OrganizationID: "org1", GymID: "g1"}); !IsErrNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_KeepsUnchangedAssignment(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	in := validInput()
	in.AssignedTrainer = "t1"
	m, _ := svc.Create(ctx, "org1", in)

	// t1 goes inactive later; editing other fields must still succeed
	svc.trainers.(mockTrainers)[key("org1", "g1", "t1")] = trainer.Trainer{ID: "t1", GymID: "g1", Status: trainer.StatusInactive}

	in.MembershipType = MembershipVIP
	got, err := svc.Update(ctx, "org1", "g1", m.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MembershipType != MembershipVIP || got.AssignedTrainer != "t1" {
		t.Errorf("unexpected member %+v", got)
	}
}

func TestReleaseTrainer(t *testing.T) {
	svc, st := setup()
	ctx := context.Background()

	in := validInput()
	in.AssignedTrainer = "t1"
	a, _ := svc.Create(ctx, "org1", in)
	b, _ := svc.Create(ctx, "org1", in)
	c, _ := svc.Create(ctx, "org1", validInput())

	n, err := svc.ReleaseTrainer(ctx, "org1", "g1", "t1")
	if err != nil || n != 2 {
		t.Fatalf("want 2 released, got %d (%v)", n, err)
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		if got, _ := st.Get(ctx, "org1", "g1", id); got.AssignedTrainer != "" {
			t.Errorf("member %s still assigned to %q", id, got.AssignedTrainer)
		}
	}

	if _, err := svc.ReleaseTrainer(ctx, "org1", "g1", ""); !IsErrBadRequest(err) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	a, _ := svc.Create(ctx, "org1", validInput())
	b := validInput()
	b.GymID = "g2"
	svc.Create(ctx, "org1", b)

	res, _ := svc.List(ctx, "org1", []scope.Ref{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}})
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 members, got %d", len(res.Items))
	}

	if err := svc.Delete(ctx, "org1", "g1", a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, "org1", "g1", a.ID); !IsErrNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
	res, _ = svc.List(ctx, "org1", []scope.Ref{{ID: "g1"}, {ID: "g2"}})
	if len(res.Items) != 1 || res.Items[0].GymID != "g2" {
		t.Errorf("unexpected members after delete %+v", res.Items)
	}
}
