package attendance

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fb "gym-manager/backend/internal/firebase"
)

type Store interface {
	Create(ctx context.Context, orgID string, rec Record) (*Record, error)
	CreateMany(ctx context.Context, orgID string, recs []Record) ([]Record, error)
	Update(ctx context.Context, orgID, gymID, id string, updates map[string]any) (*Record, error)
	List(ctx context.Context, orgID, gymID string, f DateFilter) ([]Record, error)
}

type Repo struct {
	client *firestore.Client
}

func NewRepo(client *firestore.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) attendanceCol(orgID, gymID string) *firestore.CollectionRef {
	return r.client.Collection("organizations").Doc(orgID).Collection("gyms").Doc(gymID).Collection("attendance")
}

func (r *Repo) Create(ctx context.Context, orgID string, rec Record) (*Record, error) {
	ref, _, err := r.attendanceCol(orgID, rec.GymID).Add(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}
	rec.ID = ref.ID
	return &rec, nil
}

// CreateMany writes records in batches of at most 500, the Firestore limit.
func (r *Repo) CreateMany(ctx context.Context, orgID string, recs []Record) ([]Record, error) {
	out := make([]Record, 0, len(recs))
	for start := 0; start < len(recs); start += 500 {
		end := min(start+500, len(recs))
		batch := r.client.Batch()
		chunk := make([]Record, 0, end-start)
		for _, rec := range recs[start:end] {
			ref := r.attendanceCol(orgID, rec.GymID).NewDoc()
			batch.Create(ref, rec)
			rec.ID = ref.ID
			chunk = append(chunk, rec)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return out, fmt.Errorf("failed to write attendance batch: %w", err)
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, orgID, gymID, id string, updates map[string]any) (*Record, error) {
	ref := r.attendanceCol(orgID, gymID).Doc(id)
	ups := make([]firestore.Update, 0, len(updates))
	for k, v := range updates {
		ups = append(ups, firestore.Update{Path: k, Value: v})
	}
	if _, err := ref.Update(ctx, ups); err != nil {
		if fb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update attendance: %w", err)
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}
	rec.ID = doc.Ref.ID
	return &rec, nil
}

func (r *Repo) List(ctx context.Context, orgID, gymID string, f DateFilter) ([]Record, error) {
	q := r.attendanceCol(orgID, gymID).Query
	switch {
	case f.Date != "":
		q = q.Where("date", "==", f.Date)
	default:
		if f.From != "" {
			q = q.Where("date", ">=", f.From)
		}
		if f.To != "" {
			q = q.Where("date", "<=", f.To)
		}
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	results := []Record{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list attendance: %w", err)
		}
		rec, ok := decodeListed(doc.Ref.Path, doc.DataTo)
		if !ok {
			continue
		}
		rec.ID = doc.Ref.ID
		results = append(results, rec)
	}
	return results, nil
}

// decodeListed decodes one listed document. A malformed record is logged and
// skipped so one bad mark does not hide the rest of the gym's attendance.
func decodeListed(path string, dataTo func(any) error) (Record, bool) {
	var rec Record
	if err := dataTo(&rec); err != nil {
		log.Printf("[attendance] skipping %s: %v", path, err)
		return Record{}, false
	}
	return rec, true
}
