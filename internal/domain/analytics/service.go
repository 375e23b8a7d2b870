package analytics

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type TrainerLister interface {
	List(ctx context.Context, orgID string, gyms []scope.Ref) (scope.Result[trainer.Trainer], error)
}

type MemberLister interface {
	List(ctx context.Context, orgID string, gyms []scope.Ref) (scope.Result[member.Member], error)
}

type AttendanceLister interface {
	List(ctx context.Context, orgID string, gyms []scope.Ref, f attendance.DateFilter) (scope.Result[attendance.Record], error)
}

type Service struct {
	trainers   TrainerLister
	members    MemberLister
	attendance AttendanceLister
}

func NewService(trainers TrainerLister, members MemberLister, att AttendanceLister) *Service {
	return &Service{trainers: trainers, members: members, attendance: att}
}

// DayReport computes the summary and per-gym rates for one day plus the
// trailing week ending that day.
func (s *Service) DayReport(ctx context.Context, orgID string, gyms []scope.Ref, date string) (*Report, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = utils.Today()
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest)
	}
	weekStart := day.AddDate(0, 0, -6).Format(utils.DateLayout)

	var (
		trs  scope.Result[trainer.Trainer]
		mems scope.Result[member.Member]
		week scope.Result[attendance.Record]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trs, err = s.trainers.List(gctx, orgID, gyms)
		return err
	})
	g.Go(func() (err error) {
		mems, err = s.members.List(gctx, orgID, gyms)
		return err
	})
	g.Go(func() (err error) {
		week, err = s.attendance.List(gctx, orgID, gyms, attendance.DateFilter{From: weekStart, To: date})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := []attendance.Record{}
	for _, r := range week.Items {
		if r.Date == date {
			today = append(today, r)
		}
	}

	people := People(trs.Items, mems.Items)
	return &Report{
		Date:       date,
		Summary:    Summarize(people, today),
		Gyms:       GymPerformance(gyms, people, today),
		Weekly:     WeeklyTrend(day, CalendarCounts(week.Items)),
		FailedGyms: mergeFailures(trs.Failures, mems.Failures, week.Failures),
	}, nil
}

// Calendar returns per-day counts for a YYYY-MM month.
func (s *Service) Calendar(ctx context.Context, orgID string, gyms []scope.Ref, month string) (map[string]DayCounts, []scope.Failure, error) {
	from, to, err := utils.MonthRange(month)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: month must be YYYY-MM", ErrBadRequest)
	}
	res, err := s.attendance.List(ctx, orgID, gyms, attendance.DateFilter{From: from, To: to})
	if err != nil {
		return nil, nil, err
	}
	return CalendarCounts(res.Items), res.Failures, nil
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
