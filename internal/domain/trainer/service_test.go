package trainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gym-manager/backend/internal/scope"
)

type mockStore struct {
	docs    map[string]Trainer
	seq     int
	failGym string
}

func newMockStore() *mockStore {
	return &mockStore{docs: map[string]Trainer{}}
}

func key(org, gym, id string) string { return org + "/" + gym + "/" + id }

func (m *mockStore) List(_ context.Context, orgID, gymID string) ([]Trainer, error) {
	if gymID == m.failGym {
		return nil, errors.New("unavailable")
	}
	out := []Trainer{}
	prefix := orgID + "/" + gymID + "/"
	for k, t := range m.docs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStore) Get(_ context.Context, orgID, gymID, id string) (*Trainer, error) {
	t, ok := m.docs[key(orgID, gymID, id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *mockStore) Create(_ context.Context, orgID string, t Trainer) (*Trainer, error) {
	m.seq++
	t.ID = fmt.Sprintf("t%d", m.seq)
	m.docs[key(orgID, t.GymID, t.ID)] = t
	return &t, nil
}

func (m *mockStore) Replace(_ context.Context, orgID, fromGymID string, t Trainer) error {
	from := key(orgID, fromGymID, t.ID)
	if _, ok := m.docs[from]; !ok {
		return ErrNotFound
	}
	delete(m.docs, from)
	m.docs[key(orgID, t.GymID, t.ID)] = t
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

func newTestService(st Store) *Service {
	svc := NewService(st, 2)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validInput() Input {
	return Input{
		Name:           "Alex",
		Email:          "alex@example.com",
		Phone:          "555-0100",
		Specialization: "Strength",
		Experience:     "5 years",
		GymID:          "g1",
	}
}

func TestCreate_DefaultsAndList(t *testing.T) {
	st := newMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	tr, err := svc.Create(ctx, "org1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.ID == "" {
		t.Error("expected generated id")
	}
	if tr.Status != StatusActive {
		t.Errorf("expected default status active, got %q", tr.Status)
	}
	if tr.LastActive != "2024-05-01" {
		t.Errorf("unexpected lastActive %q", tr.LastActive)
	}

	res, err := svc.List(ctx, "org1", []scope.Ref{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].GymName != "Downtown" {
		t.Fatalf("unexpected list %+v", res.Items)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newMockStore())

	in := validInput()
	in.Email = ""
	in.Phone = "   "
	_, err := svc.Create(context.Background(), "org1", in)
	if !IsErrBadRequest(err) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing required fields: email, phone") {
		t.Errorf("error should list every missing field, got %q", err.Error())
	}

	in = validInput()
	in.Status = "retired"
	if _, err := svc.Create(context.Background(), "org1", in); !IsErrBadRequest(err) {
		t.Errorf("expected bad request for unknown status, got %v", err)
	}

	if _, err := svc.Create(context.Background(), "", validInput()); !IsErrBadRequest(err) {
		t.Errorf("expected bad request without organization, got %v", err)
	}
}

func TestUpdate_OverwritesAndMoves(t *testing.T) {
	st := newMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	in := validInput()
	in.Bio = "Powerlifting coach"
	tr, _ := svc.Create(ctx, "org1", in)

	upd := validInput()
	upd.GymID = "g2"
	upd.Status = "inactive"
	got, err := svc.Update(ctx, "org1", "g1", tr.ID, upd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bio != "" {
		t.Errorf("update is a full overwrite, bio should be cleared, got %q", got.Bio)
	}
	if _, err := st.Get(ctx, "org1", "g1", tr.ID); !IsErrNotFound(err) {
		t.Error("trainer should have left g1")
	}
	moved, err := st.Get(ctx, "org1", "g2", tr.ID)
	if err != nil || moved.Status != StatusInactive {
		t.Errorf("trainer should be inactive in g2, got %+v, %v", moved, err)
	}

	if _, err := svc.Update(ctx, "org1", "g1", "missing", validInput()); !IsErrNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDelete_Twice(t *testing.T) {
	svc := newTestService(newMockStore())
	ctx := context.Background()

	tr, _ := svc.Create(ctx, "org1", validInput())
	if err := svc.Delete(ctx, "org1", "g1", tr.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, "org1", "g1", tr.ID); !IsErrNotFound(err) {
		t.Errorf("second delete should report not found, got %v", err)
	}
}

func TestList_PartialFailure(t *testing.T) {
	st := newMockStore()
	svc := newTestService(st)
	ctx := context.Background()

	a := validInput()
	b := validInput()
	b.GymID = "g2"
	svc.Create(ctx, "org1", a)
	svc.Create(ctx, "org1", b)
	st.failGym = "g2"

	res, err := svc.List(ctx, "org1", []scope.Ref{{ID: "g1"}, {ID: "g2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || len(res.Failures) != 1 {
		t.Errorf("expected 1 item and 1 failure, got %d/%d", len(res.Items), len(res.Failures))
	}
}
