package workout

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fb "gym-manager/backend/internal/firebase"
)

type Store interface {
	FindPlan(ctx context.Context, orgID, gymID, trainerID, memberID string) (*Plan, error)
	CreatePlan(ctx context.Context, p Plan) error
	GetPlan(ctx context.Context, planID string) (*Plan, error)
	// Mutate applies fn to the stored plan atomically. fn returns false to
	// skip the write.
	Mutate(ctx context.Context, planID string, fn func(p *Plan) (bool, error)) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col(orgID, gymID string) *firestore.CollectionRef {
	return r.fs.Collection("organizations").Doc(orgID).Collection("gyms").Doc(gymID).Collection("workoutPlans")
}

func (r *Repo) FindPlan(ctx context.Context, orgID, gymID, trainerID, memberID string) (*Plan, error) {
	it := r.col(orgID, gymID).
		Where("trainerId", "==", trainerID).
		Where("memberId", "==", memberID).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p Plan
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreatePlan(ctx context.Context, p Plan) error {
	_, err := r.col(p.OrganizationID, p.GymID).Doc(p.ID).Create(ctx, p)
	return err
}

// planRef locates a plan by id across every gym.
func (r *Repo) planRef(ctx context.Context, planID string) (*firestore.DocumentRef, error) {
	it := r.fs.CollectionGroup("workoutPlans").Where("id", "==", planID).Limit(1).Documents(ctx)
	defer it.Stop()
	doc, err := it.Next()
	if err == iterator.Done {
		return nil, errPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Ref, nil
}

func (r *Repo) GetPlan(ctx context.Context, planID string) (*Plan, error) {
	ref, err := r.planRef(ctx, planID)
	if err != nil {
		return nil, err
	}
	doc, err := ref.Get(ctx)
	if err != nil {
		if fb.IsNotFound(err) {
			return nil, errPlanNotFound
		}
		return nil, err
	}
	var p Plan
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Mutate(ctx context.Context, planID string, fn func(p *Plan) (bool, error)) error {
	ref, err := r.planRef(ctx, planID)
	if err != nil {
		return err
	}
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if fb.IsNotFound(err) {
				return errPlanNotFound
			}
			return err
		}
		var p Plan
		if err := doc.DataTo(&p); err != nil {
			return err
		}
		changed, err := fn(&p)
		if err != nil || !changed {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "entries", Value: p.Entries},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
}
