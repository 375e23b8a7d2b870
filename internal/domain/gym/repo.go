package gym

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	fb "gym-manager/backend/internal/firebase"
)

// Store is the persistence the gym service needs.
type Store interface {
	GymsByAdminEmail(ctx context.Context, email string) ([]Gym, error)
	ListGyms(ctx context.Context, orgID string) ([]Gym, error)
	GetOrganization(ctx context.Context, orgID string) (*Organization, error)
	AddAdminEmail(ctx context.Context, orgID, gymID, email string) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) orgs() *firestore.CollectionRef {
	return r.fs.Collection("organizations")
}

func (r *Repo) GymsByAdminEmail(ctx context.Context, email string) ([]Gym, error) {
	it := r.fs.CollectionGroup("gyms").
		Where("adminEmails", "array-contains", email).
		Documents(ctx)
	return readGyms(it)
}

func (r *Repo) ListGyms(ctx context.Context, orgID string) ([]Gym, error) {
	it := r.orgs().Doc(orgID).Collection("gyms").Documents(ctx)
	gyms, err := readGyms(it)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(gyms, func(i, j int) bool { return gyms[i].Name < gyms[j].Name })
	return gyms, nil
}

func (r *Repo) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	doc, err := r.orgs().Doc(orgID).Get(ctx)
	if err != nil {
		if fb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var o Organization
	if err := doc.DataTo(&o); err != nil {
		return nil, err
	}
	if o.ID == "" {
		o.ID = orgID
	}
	return &o, nil
}

func (r *Repo) AddAdminEmail(ctx context.Context, orgID, gymID, email string) error {
	ref := r.orgs().Doc(orgID).Collection("gyms").Doc(gymID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "adminEmails", Value: firestore.ArrayUnion(email)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if fb.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func readGyms(it *firestore.DocumentIterator) ([]Gym, error) {
	defer it.Stop()
	out := []Gym{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var g Gym
		if err := doc.DataTo(&g); err != nil {
			return nil, err
		}
		if g.ID == "" {
			g.ID = doc.Ref.ID
		}
		// organizations/{org}/gyms/{gym}
		if g.OrganizationID == "" && doc.Ref.Parent != nil && doc.Ref.Parent.Parent != nil {
			g.OrganizationID = doc.Ref.Parent.Parent.ID
		}
		out = append(out, g)
	}
	return out, nil
}
