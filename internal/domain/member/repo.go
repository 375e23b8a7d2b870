package member

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fb "gym-manager/backend/internal/firebase"
)

type Store interface {
	List(ctx context.Context, orgID, gymID string) ([]Member, error)
	Get(ctx context.Context, orgID, gymID, id string) (*Member, error)
	Create(ctx context.Context, orgID string, m Member) (*Member, error)
	Replace(ctx context.Context, orgID, fromGymID string, m Member) error
	SetAssignedTrainer(ctx context.Context, orgID, gymID, id, trainerID string) error
	Delete(ctx context.Context, orgID, gymID, id string) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col(orgID, gymID string) *firestore.CollectionRef {
	return r.fs.Collection("organizations").Doc(orgID).Collection("gyms").Doc(gymID).Collection("users")
}

func (r *Repo) List(ctx context.Context, orgID, gymID string) ([]Member, error) {
	iter := r.col(orgID, gymID).Documents(ctx)
	defer iter.Stop()

	results := []Member{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var m Member
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		results = append(results, m)
	}
	return results, nil
}

func (r *Repo) Get(ctx context.Context, orgID, gymID, id string) (*Member, error) {
	doc, err := r.col(orgID, gymID).Doc(id).Get(ctx)
	if err != nil {
		if fb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var m Member
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = doc.Ref.ID
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, orgID string, m Member) (*Member, error) {
	ref := r.col(orgID, m.GymID).NewDoc()
	if _, err := ref.Create(ctx, m); err != nil {
		return nil, err
	}
	m.ID = ref.ID
	return &m, nil
}

func (r *Repo) Replace(ctx context.Context, orgID, fromGymID string, m Member) error {
	from := r.col(orgID, fromGymID).Doc(m.ID)
	to := r.col(orgID, m.GymID).Doc(m.ID)

	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(from); err != nil {
			if fb.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if from.Path != to.Path {
			if err := tx.Delete(from); err != nil {
				return err
			}
		}
		return tx.Set(to, m)
	})
}

func (r *Repo) SetAssignedTrainer(ctx context.Context, orgID, gymID, id, trainerID string) error {
	// Update fails with NotFound when the member does not exist
	_, err := r.col(orgID, gymID).Doc(id).Update(ctx, []firestore.Update{
		{Path: "assignedTrainer", Value: trainerID},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if fb.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, orgID, gymID, id string) error {
	_, err := r.col(orgID, gymID).Doc(id).Delete(ctx, firestore.Exists)
	if fb.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
