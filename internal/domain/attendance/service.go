package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

type Service struct {
	store Store
	limit int
	now   func() time.Time
}

func NewService(store Store, concurrency int) *Service {
	return &Service{
		store: store,
		limit: concurrency,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Mark appends an attendance record. Earlier marks for the same person and
// day are left in place.
func (s *Service) Mark(ctx context.Context, markedBy, orgID string, in MarkInput) (*Record, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	rec, err := s.build(markedBy, in)
	if err != nil {
		return nil, err
	}
	return s.store.Create(ctx, orgID, rec)
}

// BulkMark records many people of one gym for the same day in batched writes.
func (s *Service) BulkMark(ctx context.Context, markedBy, orgID string, in BulkInput) ([]Record, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(in.GymID) == "" {
		return nil, fmt.Errorf("%w: organizationId and gymId are required", ErrBadRequest)
	}
	if len(in.Records) == 0 {
		return nil, fmt.Errorf("%w: records are required", ErrBadRequest)
	}

	recs := make([]Record, 0, len(in.Records))
	for i, r := range in.Records {
		r.GymID = in.GymID
		if r.Date == "" {
			r.Date = in.Date
		}
		rec, err := s.build(markedBy, r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return s.store.CreateMany(ctx, orgID, recs)
}

// Update corrects status or notes on an existing record.
func (s *Service) Update(ctx context.Context, orgID, gymID, id string, in UpdateInput) (*Record, error) {
	if strings.TrimSpace(orgID) == "" || strings.TrimSpace(gymID) == "" || strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: organizationId, gymId and id are required", ErrBadRequest)
	}
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}

	updates := map[string]any{}
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: status must be one of: present absent late", ErrBadRequest)
		}
		updates["status"] = *in.Status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrBadRequest)
	}
	updates["timestamp"] = s.now()

	rec, err := s.store.Update(ctx, orgID, gymID, id, updates)
	if err != nil {
		if IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: attendance record not found", ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

// List gathers attendance for every gym in scope matching the date filter.
func (s *Service) List(ctx context.Context, orgID string, gyms []scope.Ref, f DateFilter) (scope.Result[Record], error) {
	if strings.TrimSpace(orgID) == "" {
		return scope.Result[Record]{}, fmt.Errorf("%w: organizationId is required", ErrBadRequest)
	}
	if err := validateFilter(f); err != nil {
		return scope.Result[Record]{}, err
	}
	return scope.Gather(ctx, gyms, s.limit,
		func(ctx context.Context, g scope.Ref) ([]Record, error) {
			return s.store.List(ctx, orgID, g.ID, f)
		},
		func(r Record, g scope.Ref) Record {
			r.GymID = g.ID
			r.GymName = g.Name
			return r
		},
	), nil
}

// Month lists a whole YYYY-MM month.
func (s *Service) Month(ctx context.Context, orgID string, gyms []scope.Ref, month string) (scope.Result[Record], error) {
	from, to, err := utils.MonthRange(month)
	if err != nil {
		return scope.Result[Record]{}, fmt.Errorf("%w: month must be YYYY-MM", ErrBadRequest)
	}
	return s.List(ctx, orgID, gyms, DateFilter{From: from, To: to})
}

func (s *Service) build(markedBy string, in MarkInput) (Record, error) {
	in.Trim()
	if msg := utils.Validate(in); msg != "" {
		return Record{}, fmt.Errorf("%w: %s", ErrBadRequest, msg)
	}
	if markedBy == "" {
		markedBy = "admin"
	}
	return Record{
		PersonID:   in.PersonID,
		PersonName: in.PersonName,
		PersonType: in.PersonType,
		Status:     in.Status,
		Date:       in.Date,
		Notes:      in.Notes,
		GymID:      in.GymID,
		MarkedBy:   markedBy,
		Timestamp:  s.now(),
	}, nil
}

func validateFilter(f DateFilter) error {
	for _, d := range []string{f.Date, f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrBadRequest)
		}
	}
	if f.Date == "" && f.From != "" && f.To != "" && f.From > f.To {
		return fmt.Errorf("%w: from must not be after to", ErrBadRequest)
	}
	return nil
}
