package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
)

func people(n int, gym string) []Person {
	out := make([]Person, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Person{ID: fmt.Sprintf("%s-p%d", gym, i), GymID: gym, Type: attendance.PersonUser})
	}
	return out
}

func rec(person, status, date string) attendance.Record {
	return attendance.Record{PersonID: person, Status: status, Date: date}
}

func TestSummarize(t *testing.T) {
	ten := people(10, "g1")

	var seven []attendance.Record
	for i := 0; i < 7; i++ {
		seven = append(seven, rec(ten[i].ID, attendance.StatusPresent, "2024-05-01"))
	}

	tests := []struct {
		name    string
		people  []Person
		records []attendance.Record
		want    Summary
	}{
		{"empty scope", nil, nil, Summary{}},
		{"nobody marked", ten, nil, Summary{Total: 10, Absent: 10}},
		{"seven of ten present", ten, seven, Summary{Total: 10, Present: 7, Absent: 3, Rate: 70}},
		{
			"late and explicit absent",
			ten[:4],
			[]attendance.Record{
				rec(ten[0].ID, attendance.StatusPresent, "2024-05-01"),
				rec(ten[1].ID, attendance.StatusLate, "2024-05-01"),
				rec(ten[2].ID, attendance.StatusAbsent, "2024-05-01"),
			},
			Summary{Total: 4, Present: 1, Late: 1, Absent: 2, Rate: 25},
		},
		{
			"duplicates use first record",
			ten[:2],
			[]attendance.Record{
				rec(ten[0].ID, attendance.StatusPresent, "2024-05-01"),
				rec(ten[0].ID, attendance.StatusAbsent, "2024-05-01"),
				rec(ten[0].ID, attendance.StatusPresent, "2024-05-01"),
			},
			Summary{Total: 2, Present: 1, Absent: 1, Rate: 50},
		},
		{
			"person listed twice counts once",
			[]Person{ten[0], ten[1], ten[0]},
			[]attendance.Record{rec(ten[0].ID, attendance.StatusPresent, "2024-05-01")},
			Summary{Total: 2, Present: 1, Absent: 1, Rate: 50},
		},
		{
			"records outside scope ignored",
			ten[:1],
			[]attendance.Record{
				rec("stranger", attendance.StatusPresent, "2024-05-01"),
				rec("stranger-2", attendance.StatusLate, "2024-05-01"),
			},
			Summary{Total: 1, Absent: 1},
		},
		{
			"rounding",
			ten[:3],
			[]attendance.Record{rec(ten[0].ID, attendance.StatusPresent, "2024-05-01"), rec(ten[1].ID, attendance.StatusPresent, "2024-05-01")},
			Summary{Total: 3, Present: 2, Absent: 1, Rate: 67},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.people, tt.records)
			if got != tt.want {
				t.Errorf("want %+v, got %+v", tt.want, got)
			}
			if got.Present+got.Late+got.Absent != got.Total {
				t.Errorf("counts do not add up: %+v", got)
			}
		})
	}
}

func TestCalendarAndWeeklyTrend(t *testing.T) {
	records := []attendance.Record{
		rec("a", attendance.StatusPresent, "2024-05-01"),
		rec("b", attendance.StatusPresent, "2024-05-01"),
		rec("c", attendance.StatusLate, "2024-05-01"),
		rec("a", attendance.StatusAbsent, "2024-05-03"),
		rec("a", attendance.StatusPresent, "2024-05-07"),
		rec("z", "excused", "2024-05-07"),
	}
	cal := CalendarCounts(records)
	if cal["2024-05-01"] != (DayCounts{Present: 2, Late: 1}) {
		t.Errorf("unexpected counts for 05-01: %+v", cal["2024-05-01"])
	}
	if cal["2024-05-07"] != (DayCounts{Present: 1}) {
		t.Errorf("unknown statuses should be skipped: %+v", cal["2024-05-07"])
	}

	trend := WeeklyTrend(time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), cal)
	if len(trend) != 7 {
		t.Fatalf("expected 7 days, got %d", len(trend))
	}
	if trend[0].Date != "2024-05-01" || trend[0].Present != 2 || trend[0].Day != "Wed" {
		t.Errorf("unexpected first day %+v", trend[0])
	}
	if trend[2].Present != 0 || trend[6].Present != 1 {
		t.Errorf("unexpected trend %+v", trend)
	}
}

func TestGymPerformance(t *testing.T) {
	g1 := people(4, "g1")
	g2 := people(2, "g2")
	all := append(append([]Person{}, g1...), g2...)
	records := []attendance.Record{
		rec(g1[0].ID, attendance.StatusPresent, "2024-05-01"),
		rec(g1[1].ID, attendance.StatusPresent, "2024-05-01"),
		rec(g1[2].ID, attendance.StatusLate, "2024-05-01"),
	}

	got := GymPerformance([]scope.Ref{{ID: "g1", Name: "Downtown"}, {ID: "g2", Name: "Uptown"}, {ID: "g3", Name: "Empty"}}, all, records)
	want := []GymRate{
		{GymID: "g1", GymName: "Downtown", People: 4, Present: 2, Rate: 50},
		{GymID: "g2", GymName: "Uptown", People: 2, Present: 0, Rate: 0},
		{GymID: "g3", GymName: "Empty", People: 0, Present: 0, Rate: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d gyms, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("gym %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFilterPeople(t *testing.T) {
	ps := People(
		[]trainer.Trainer{{ID: "t1", GymID: "g1"}},
		[]member.Member{{ID: "m1", GymID: "g1"}, {ID: "m2", GymID: "g2"}},
	)
	if len(ps) != 3 || ps[0].Type != attendance.PersonTrainer {
		t.Fatalf("unexpected people %+v", ps)
	}
	if n := len(FilterPeople(ps, "g1", "all")); n != 2 {
		t.Errorf("expected 2 people in g1, got %d", n)
	}
	if n := len(FilterPeople(ps, "all", attendance.PersonUser)); n != 2 {
		t.Errorf("expected 2 members, got %d", n)
	}
	if n := len(FilterPeople(ps, "g2", attendance.PersonTrainer)); n != 0 {
		t.Errorf("expected nobody, got %d", n)
	}
}

type fakeTrainers []trainer.Trainer

func (f fakeTrainers) List(context.Context, string, []scope.Ref) (scope.Result[trainer.Trainer], error) {
	return scope.Result[trainer.Trainer]{Items: f}, nil
}

type fakeMembers []member.Member

func (f fakeMembers) List(context.Context, string, []scope.Ref) (scope.Result[member.Member], error) {
	return scope.Result[member.Member]{Items: f, Failures: []scope.Failure{{GymID: "g2", Error: "boom"}}}, nil
}

type fakeAttendance []attendance.Record

func (f fakeAttendance) List(_ context.Context, _ string, _ []scope.Ref, df attendance.DateFilter) (scope.Result[attendance.Record], error) {
	out := []attendance.Record{}
	for _, r := range f {
		if df.Match(r.Date) {
			out = append(out, r)
		}
	}
	return scope.Result[attendance.Record]{Items: out}, nil
}

func TestDayReport(t *testing.T) {
	svc := NewService(
		fakeTrainers{{ID: "t1", GymID: "g1", Status: "active"}},
		fakeMembers{{ID: "m1", GymID: "g1"}},
		fakeAttendance{
			rec("t1", attendance.StatusPresent, "2024-05-07"),
			rec("m1", attendance.StatusPresent, "2024-05-05"),
			rec("m1", attendance.StatusPresent, "2024-04-01"),
		},
	)

	rep, err := svc.DayReport(context.Background(), "org1", []scope.Ref{{ID: "g1"}, {ID: "g2"}}, "2024-05-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Summary != (Summary{Total: 2, Present: 1, Absent: 1, Rate: 50}) {
		t.Errorf("unexpected summary %+v", rep.Summary)
	}
	if rep.Weekly[4].Date != "2024-05-05" || rep.Weekly[4].Present != 1 {
		t.Errorf("unexpected weekly %+v", rep.Weekly)
	}
	if len(rep.FailedGyms) != 1 || rep.FailedGyms[0].GymID != "g2" {
		t.Errorf("expected g2 failure, got %+v", rep.FailedGyms)
	}

	if _, err := svc.DayReport(context.Background(), "org1", nil, "yesterday"); !IsErrBadRequest(err) {
		t.Errorf("expected bad request, got %v", err)
	}

	cal, _, err := svc.Calendar(context.Background(), "org1", nil, "2024-05")
	if err != nil || len(cal) != 2 {
		t.Errorf("unexpected calendar %+v, %v", cal, err)
	}
}
