package dashboard_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/dashboard"
	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/device"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/retention"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/domain/workout"
	apihttp "gym-manager/backend/internal/http"
	"gym-manager/backend/internal/store"
)

type fakeAuth struct {
	tokens map[string]*auth.Token
}

func (f *fakeAuth) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid token")
}

func (f *fakeAuth) VerifySessionCookieAndCheckRevoked(ctx context.Context, cookie string) (*auth.Token, error) {
	return f.VerifyIDToken(ctx, strings.TrimPrefix(cookie, "sess-"))
}

func (f *fakeAuth) SessionCookie(_ context.Context, idToken string, _ time.Duration) (string, error) {
	return "sess-" + idToken, nil
}

func (f *fakeAuth) RevokeRefreshTokens(context.Context, string) error { return nil }

func (f *fakeAuth) CreateUser(context.Context, *auth.UserToCreate) (*auth.UserRecord, error) {
	return nil, errors.New("not supported")
}

func newServer(t *testing.T) (string, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.AddOrganization(gym.Organization{ID: "org1", Name: "Iron Works"},
		gym.Gym{ID: "g1", Name: "Downtown", AdminEmails: []string{"admin@example.com"}},
		gym.Gym{ID: "g2", Name: "Uptown", AdminEmails: []string{"admin@example.com"}},
		gym.Gym{ID: "g3", Name: "Harbor"},
	)
	mem.AddDevice(device.Device{OrganizationID: "org1", GymID: "g1", GymName: "Downtown", Status: "active"})
	mem.AddDevice(device.Device{OrganizationID: "org1", GymID: "g3", GymName: "Harbor", Status: "active"})

	fa := &fakeAuth{tokens: map[string]*auth.Token{
		"admin-token":    {UID: "u1", Claims: map[string]any{"email": "admin@example.com"}},
		"stranger-token": {UID: "u2", Claims: map[string]any{"email": "nobody@example.com"}},
	}}

	trainerSvc := trainer.NewService(mem.Trainers, 4)
	memberSvc := member.NewService(mem.Members, trainerSvc, 4)
	attSvc := attendance.NewService(mem.Attendance, 4)
	h := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:          config.Config{SessionCookieName: "session", SessionTTL: time.Hour},
		Auth:         fa,
		Profiles:     mem.Profiles,
		GymSvc:       gym.NewService(mem.Gyms, mem.Profiles),
		TrainerSvc:   trainerSvc,
		MemberSvc:    memberSvc,
		AttendSvc:    attSvc,
		AnalyticsSvc: analytics.NewService(trainerSvc, memberSvc, attSvc),
		RetentionSvc: retention.NewService(memberSvc, attSvc),
		DeviceSvc:    device.NewService(mem.Devices),
		WorkoutSvc:   workout.NewService(mem.Plans),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL, mem
}

func signIn(t *testing.T, base, token string) *dashboard.Client {
	t.Helper()
	c, err := dashboard.NewClient(base)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		if _, err := c.Login(context.Background(), token); err != nil {
			t.Fatalf("login: %v", err)
		}
	}
	return c
}

func TestDashboard_EndToEnd(t *testing.T) {
	ctx := context.Background()
	base, mem := newServer(t)
	c := signIn(t, base, "admin-token")

	s, err := dashboard.Init(ctx, c)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if s.OrganizationID() != "org1" || len(s.UserGyms()) != 2 || len(s.AllGyms()) != 3 {
		t.Fatalf("unexpected scope org=%s user=%v all=%v", s.OrganizationID(), s.UserGyms(), s.AllGyms())
	}

	trainers := dashboard.NewTrainerPanel(s, c)
	members := dashboard.NewMemberPanel(s, c)
	devices := dashboard.NewDevicePanel(s, c)
	if err := dashboard.RefreshAll(ctx, trainers, members, devices); err != nil {
		t.Fatal(err)
	}
	if n := len(trainers.All()); n != 0 {
		t.Fatalf("expected no trainers yet, got %d", n)
	}
	if n := len(devices.List("all")); n != 1 {
		t.Errorf("devices of other gyms must not be listed, got %d", n)
	}

	ana, err := trainers.Create(ctx, trainer.Input{
		Name: "Ana Núñez", Email: "ana@example.com", Phone: "555-0100",
		Specialization: "Strength", Experience: "5 years", GymID: "g1",
	})
	if err != nil {
		t.Fatalf("create trainer: %v", err)
	}
	if got := trainers.List(dashboard.TrainerFilter{Search: "nunez"}); len(got) != 1 || got[0].GymName != "Downtown" {
		t.Errorf("created trainer should be listed with its gym name, got %+v", got)
	}

	_, err = trainers.Create(ctx, trainer.Input{Name: "Out of scope", Email: "x@example.com", Phone: "1",
		Specialization: "Yoga", Experience: "1", GymID: "g3"})
	if !dashboard.IsStatus(err, 403) {
		t.Errorf("creating in a gym outside scope: want 403, got %v", err)
	}

	cleo, err := members.Create(ctx, member.Input{
		Name: "Cleo", Email: "cleo@example.com", Phone: "555-0101", Age: "31",
		Gender: "female", GymID: "g1", EmergencyContact: "555-0199",
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if err := members.Assign(ctx, *cleo, ana.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got := dashboard.MembersOf(members.All(), ana.ID); len(got) != 1 {
		t.Errorf("expected one member of %s, got %+v", ana.ID, got)
	}

	att := dashboard.NewAttendancePanel(s, c, trainers, members)
	if err := att.SelectDate(ctx, "2024-05-07"); err != nil {
		t.Fatal(err)
	}
	person := att.People(dashboard.PeopleFilter{Type: "user"})[0]
	if _, err := att.Mark(ctx, person, "late", "traffic"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if r, ok := att.PersonAttendance(cleo.ID); !ok || r.Status != "late" {
		t.Errorf("unexpected attendance %+v %v", r, ok)
	}
	if got := att.Analytics(); got != (analytics.Summary{Total: 2, Late: 1, Absent: 1}) {
		t.Errorf("unexpected summary %+v", got)
	}
	cal, err := att.LoadMonth(ctx, "2024-05")
	if err != nil || cal["2024-05-07"].Late != 1 {
		t.Errorf("unexpected calendar %+v (%v)", cal, err)
	}

	// a failing gym is reported without hiding the others
	mem.FailGym("g2", errors.New("unavailable"))
	if err := trainers.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if f := trainers.Failures(); len(f) != 1 || f[0].GymID != "g2" {
		t.Errorf("unexpected failures %+v", f)
	}
	if n := len(trainers.All()); n != 1 {
		t.Errorf("trainers of healthy gyms should still be listed, got %d", n)
	}
	mem.FailGym("g2", nil)

	ok, err := trainers.Delete(ctx, *ana, func(trainer.Trainer) bool { return true })
	if !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if len(trainers.All()) != 0 {
		t.Error("deleted trainer still listed")
	}

	s.Teardown(ctx)
	if !s.Closed() || len(s.GymIDs()) != 0 {
		t.Error("teardown should clear the scope")
	}
	if _, err := c.VerifyUser(ctx); !errors.Is(err, dashboard.ErrNoSession) {
		t.Errorf("session should be gone after teardown, got %v", err)
	}
}

func TestDashboard_GateOutcomes(t *testing.T) {
	ctx := context.Background()
	base, _ := newServer(t)

	if _, err := dashboard.Init(ctx, signIn(t, base, "")); !errors.Is(err, dashboard.ErrSignInRequired) {
		t.Errorf("no session: want ErrSignInRequired, got %v", err)
	}

	var denied *dashboard.DeniedError
	if _, err := dashboard.Init(ctx, signIn(t, base, "stranger-token")); !errors.As(err, &denied) {
		t.Fatalf("unregistered user: want DeniedError, got %v", err)
	}
	if denied.Reason != gym.DenialNoGym {
		t.Errorf("unexpected reason %q", denied.Reason)
	}
}
