package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type AttendanceAPI interface {
	ListAttendance(ctx context.Context, orgID string, gymIDs []string, f attendance.DateFilter) ([]attendance.Record, []scope.Failure, error)
	MarkAttendance(ctx context.Context, orgID string, in attendance.MarkInput) (*attendance.Record, error)
	AttendanceCalendar(ctx context.Context, orgID string, gymIDs []string, month string) (map[string]analytics.DayCounts, []scope.Failure, error)
}

// PeopleFilter selects people by gym and type (trainer | user).
type PeopleFilter struct {
	GymID string
	Type  string
}

// AttendancePanel shows the records of one selected day for everyone the
// trainer and member panels hold.
type AttendancePanel struct {
	s        *Session
	api      AttendanceAPI
	trainers *TrainerPanel
	members  *MemberPanel
	list     list[attendance.Record]

	mu           sync.RWMutex
	date         string
	month        string
	calendar     map[string]analytics.DayCounts
	monthGen     uint64
	monthApplied uint64
}

func NewAttendancePanel(s *Session, api AttendanceAPI, trainers *TrainerPanel, members *MemberPanel) *AttendancePanel {
	return &AttendancePanel{
		s:        s,
		api:      api,
		trainers: trainers,
		members:  members,
		date:     utils.Today(),
		calendar: map[string]analytics.DayCounts{},
	}
}

func (p *AttendancePanel) Date() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.date
}

// SelectDate switches the panel to date and fetches its records.
func (p *AttendancePanel) SelectDate(ctx context.Context, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return &OperationError{Op: "select date", Err: err}
	}
	p.mu.Lock()
	p.date = date
	p.mu.Unlock()
	return p.Refresh(ctx)
}

func (p *AttendancePanel) Refresh(ctx context.Context) error {
	gen := p.list.begin()
	items, failed, err := p.api.ListAttendance(ctx, p.s.OrganizationID(), p.s.GymIDs(), attendance.DateFilter{Date: p.Date()})
	if err != nil {
		return &OperationError{Op: "fetch attendance", Err: err}
	}
	p.list.apply(gen, items, failed)
	return nil
}

func (p *AttendancePanel) Records() []attendance.Record { return p.list.snapshot() }
func (p *AttendancePanel) Failures() []scope.Failure    { return p.list.failures() }

// Mark records status for person on the selected date, then re-fetches.
func (p *AttendancePanel) Mark(ctx context.Context, person analytics.Person, status, notes string) (*attendance.Record, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !attendance.IsValidStatus(status) {
		return nil, &OperationError{Op: "mark attendance", Err: fmt.Errorf("unknown status %q", status)}
	}
	in := attendance.MarkInput{
		PersonID:   person.ID,
		PersonName: person.Name,
		PersonType: person.Type,
		Status:     status,
		Date:       p.Date(),
		Notes:      notes,
		GymID:      person.GymID,
	}
	out, err := p.api.MarkAttendance(ctx, p.s.OrganizationID(), in)
	if err != nil {
		return nil, &OperationError{Op: "mark attendance", Err: err}
	}
	return out, p.Refresh(ctx)
}

// PersonAttendance returns the first record of personID on the selected
// date.
func (p *AttendancePanel) PersonAttendance(personID string) (attendance.Record, bool) {
	for _, r := range p.list.snapshot() {
		if r.PersonID == personID {
			return r, true
		}
	}
	return attendance.Record{}, false
}

// People lists trainers and members matching f.
func (p *AttendancePanel) People(f PeopleFilter) []analytics.Person {
	ps := analytics.People(p.trainers.All(), p.members.All())
	return analytics.FilterPeople(ps, f.GymID, f.Type)
}

// Analytics summarizes the selected date over everyone in scope.
func (p *AttendancePanel) Analytics() analytics.Summary {
	return analytics.Summarize(p.People(PeopleFilter{}), p.list.snapshot())
}

func (p *AttendancePanel) GymPerformance() []analytics.GymRate {
	gyms := p.s.UserGyms()
	refs := make([]scope.Ref, 0, len(gyms))
	for _, g := range gyms {
		refs = append(refs, g.Ref())
	}
	return analytics.GymPerformance(refs, p.People(PeopleFilter{}), p.list.snapshot())
}

// LoadMonth fetches per-day counts for a YYYY-MM month. A fetch that
// finishes after a later LoadMonth has been applied is returned but not kept.
func (p *AttendancePanel) LoadMonth(ctx context.Context, month string) (map[string]analytics.DayCounts, error) {
	p.mu.Lock()
	p.monthGen++
	gen := p.monthGen
	p.mu.Unlock()

	cal, _, err := p.api.AttendanceCalendar(ctx, p.s.OrganizationID(), p.s.GymIDs(), month)
	if err != nil {
		return nil, &OperationError{Op: "load month", Err: err}
	}
	p.mu.Lock()
	if gen > p.monthApplied {
		p.monthApplied = gen
		p.month = month
		p.calendar = cal
	}
	p.mu.Unlock()
	return cal, nil
}

// Month is the last loaded YYYY-MM month, or "".
func (p *AttendancePanel) Month() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.month
}

// WeeklyTrend is the present count of the seven days ending today, read
// from the loaded month.
func (p *AttendancePanel) WeeklyTrend(today time.Time) []analytics.DayTrend {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return analytics.WeeklyTrend(today, p.calendar)
}
