package trainer

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fb "gym-manager/backend/internal/firebase"
)

type Store interface {
	List(ctx context.Context, orgID, gymID string) ([]Trainer, error)
	Get(ctx context.Context, orgID, gymID, id string) (*Trainer, error)
	Create(ctx context.Context, orgID string, t Trainer) (*Trainer, error)
	// Replace overwrites an existing trainer. When t.GymID differs from
	// fromGymID the document moves to the new gym under the same id.
	Replace(ctx context.Context, orgID, fromGymID string, t Trainer) error
	Delete(ctx context.Context, orgID, gymID, id string) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) col(orgID, gymID string) *firestore.CollectionRef {
	return r.fs.Collection("organizations").Doc(orgID).Collection("gyms").Doc(gymID).Collection("trainers")
}

func (r *Repo) List(ctx context.Context, orgID, gymID string) ([]Trainer, error) {
	it := r.col(orgID, gymID).Documents(ctx)
	defer it.Stop()

	out := []Trainer{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var t Trainer
		if err := doc.DataTo(&t); err != nil {
			return nil, err
		}
		t.ID = doc.Ref.ID
		out = append(out, t)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, orgID, gymID, id string) (*Trainer, error) {
	doc, err := r.col(orgID, gymID).Doc(id).Get(ctx)
	if err != nil {
		if fb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var t Trainer
	if err := doc.DataTo(&t); err != nil {
		return nil, err
	}
	t.ID = doc.Ref.ID
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, orgID string, t Trainer) (*Trainer, error) {
	ref := r.col(orgID, t.GymID).NewDoc()
	if _, err := ref.Create(ctx, t); err != nil {
		return nil, err
	}
	t.ID = ref.ID
	return &t, nil
}

func (r *Repo) Replace(ctx context.Context, orgID, fromGymID string, t Trainer) error {
	from := r.col(orgID, fromGymID).Doc(t.ID)
	to := r.col(orgID, t.GymID).Doc(t.ID)

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
		return tx.Set(to, t)
	})
}

func (r *Repo) Delete(ctx context.Context, orgID, gymID, id string) error {
	_, err := r.col(orgID, gymID).Doc(id).Delete(ctx, firestore.Exists)
	if fb.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
