package scope

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type rec struct {
	ID      string
	GymID   string
	GymName string
}

func tagRec(r rec, g Ref) rec {
	r.GymID = g.ID
	r.GymName = g.Name
	return r
}

func TestGather_PartialFailure(t *testing.T) {
	gyms := []Ref{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}, {ID: "g3", Name: "Harbor"}}
	data := map[string][]rec{
		"g1": {{ID: "a"}, {ID: "b"}},
		"g3": {{ID: "c"}},
	}

	res := Gather(context.Background(), gyms, 2, func(_ context.Context, g Ref) ([]rec, error) {
		if g.ID == "g2" {
			return nil, errors.New("permission denied")
		}
		return append([]rec(nil), data[g.ID]...), nil
	}, tagRec)

	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	if len(res.Failures) != 1 || res.Failures[0].GymID != "g2" {
		t.Fatalf("expected g2 failure, got %+v", res.Failures)
	}
	want := []rec{
		{ID: "a", GymID: "g1", GymName: "Downtown"},
		{ID: "b", GymID: "g1", GymName: "Downtown"},
		{ID: "c", GymID: "g3", GymName: "Harbor"},
	}
	for i := range want {
		if res.Items[i] != want[i] {
			t.Errorf("item %d: want %+v, got %+v", i, want[i], res.Items[i])
		}
	}
}

func TestGather_NoDedup(t *testing.T) {
	gyms := []Ref{{ID: "g1"}, {ID: "g1"}}
	res := Gather(context.Background(), gyms, 0, func(_ context.Context, g Ref) ([]rec, error) {
		return []rec{{ID: "same"}}, nil
	}, nil)
	if len(res.Items) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d items", len(res.Items))
	}
}

func TestGather_AllFail(t *testing.T) {
	gyms := []Ref{{ID: "g1"}, {ID: "g2"}}
	var calls int32
	res := Gather(context.Background(), gyms, 1, func(_ context.Context, g Ref) ([]rec, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom")
	}, tagRec)

	if calls != 2 {
		t.Errorf("every gym should be attempted, got %d calls", calls)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %#v", res.Items)
	}
	if len(res.Failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(res.Failures))
	}
}

func TestGather_Empty(t *testing.T) {
	res := Gather[rec](context.Background(), nil, 4, func(context.Context, Ref) ([]rec, error) {
		t.Fatal("fetch should not be called")
		return nil, nil
	}, nil)
	if len(res.Items) != 0 || len(res.Failures) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}
