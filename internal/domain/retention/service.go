// Package retention finds active members who stopped showing up.
package retention

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type MemberLister interface {
	List(ctx context.Context, orgID string, gyms []scope.Ref) (scope.Result[member.Member], error)
}

type AttendanceLister interface {
	List(ctx context.Context, orgID string, gyms []scope.Ref, f attendance.DateFilter) (scope.Result[attendance.Record], error)
}

type Service struct {
	members    MemberLister
	attendance AttendanceLister
	now        func() time.Time
}

func NewService(members MemberLister, att AttendanceLister) *Service {
	return &Service{members: members, attendance: att, now: time.Now}
}

// Alerts scans the attendance of the critical window ending asOf ("" means
// today) and reports every active member at risk.
func (s *Service) Alerts(ctx context.Context, orgID string, gyms []scope.Ref, asOf string, settings Settings) (*Report, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	asOf = strings.TrimSpace(asOf)
	if asOf == "" {
		asOf = utils.Today()
	}
	day, err := utils.ParseDate(asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: asOf must be YYYY-MM-DD", ErrBadRequest)
	}
	from := day.AddDate(0, 0, -criticalDays(settings)).Format(utils.DateLayout)

	var (
		mems scope.Result[member.Member]
		recs scope.Result[attendance.Record]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		mems, err = s.members.List(gctx, orgID, gyms)
		return err
	})
	g.Go(func() (err error) {
		recs, err = s.attendance.List(gctx, orgID, gyms, attendance.DateFilter{From: from, To: asOf})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := Scan(mems.Items, recs.Items, settings, day)
	rep.AsOf = asOf
	rep.ScannedAt = s.now().UTC()
	rep.FailedGyms = mergeFailures(mems.Failures, recs.Failures)
	return rep, nil
}

type visits struct {
	last  string
	count int
}

// Scan classifies members by days since their last present or late record
// up to asOf. Inactive and suspended members are skipped.
func Scan(members []member.Member, records []attendance.Record, settings Settings, asOf time.Time) *Report {
	seen := map[string]visits{}
	cutoff := asOf.Format(utils.DateLayout)
	for _, r := range records {
		if r.PersonType != attendance.PersonUser || r.Date > cutoff {
			continue
		}
		if r.Status != attendance.StatusPresent && r.Status != attendance.StatusLate {
			continue
		}
		v := seen[r.PersonID]
		v.count++
		if r.Date > v.last {
			v.last = r.Date
		}
		seen[r.PersonID] = v
	}

	watch := int(math.Floor(float64(settings.ThresholdDays) * settings.WatchRatio))
	critical := criticalDays(settings)

	rep := &Report{Settings: settings, Alerts: []Alert{}}
	for _, m := range members {
		if m.Status != member.StatusActive {
			continue
		}
		rep.Stats.TotalMembers++

		v := seen[m.ID]
		days := -1
		if v.last != "" {
			days = daysBetween(v.last, asOf)
		}
		if days >= 0 && days < watch {
			continue
		}

		var risk RiskLevel
		switch {
		case days < 0 || days >= critical:
			risk = RiskCritical
		case days >= settings.ThresholdDays:
			risk = RiskWarning
		default:
			risk = RiskWatch
		}

		rep.Alerts = append(rep.Alerts, Alert{
			MemberID:                m.ID,
			Name:                    m.Name,
			Email:                   m.Email,
			GymID:                   m.GymID,
			GymName:                 m.GymName,
			AssignedTrainer:         m.AssignedTrainer,
			LastAttendedDate:        v.last,
			DaysSinceLastAttendance: days,
			Visits:                  v.count,
			RiskLevel:               risk,
		})
		switch risk {
		case RiskCritical:
			rep.Stats.Critical++
		case RiskWarning:
			rep.Stats.Warning++
		case RiskWatch:
			rep.Stats.Watch++
		}
	}
	rep.Stats.TotalAtRisk = len(rep.Alerts)

	// critical first, then longest absence; no visit at all sorts first
	sort.SliceStable(rep.Alerts, func(i, j int) bool {
		ri, rj := riskOrder(rep.Alerts[i].RiskLevel), riskOrder(rep.Alerts[j].RiskLevel)
		if ri != rj {
			return ri < rj
		}
		di, dj := rep.Alerts[i].DaysSinceLastAttendance, rep.Alerts[j].DaysSinceLastAttendance
		if di < 0 {
			di = math.MaxInt32
		}
		if dj < 0 {
			dj = math.MaxInt32
		}
		return di > dj
	})
	return rep
}

func criticalDays(s Settings) int {
	return int(math.Floor(float64(s.ThresholdDays) * s.CriticalMultiplier))
}

func daysBetween(date string, asOf time.Time) int {
	t, err := utils.ParseDate(date)
	if err != nil {
		return -1
	}
	y, m, d := asOf.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(day.Sub(t).Hours() / 24)
}

func riskOrder(r RiskLevel) int {
	switch r {
	case RiskCritical:
		return 0
	case RiskWarning:
		return 1
	default:
		return 2
	}
}

func mergeFailures(lists ...[]scope.Failure) []scope.Failure {
	seen := map[string]bool{}
	var out []scope.Failure
	for _, l := range lists {
		for _, f := range l {
			if seen[f.GymID] {
				continue
			}
			seen[f.GymID] = true
			out = append(out, f)
		}
	}
	return out
}
