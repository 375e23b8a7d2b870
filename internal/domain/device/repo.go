package device

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Store interface {
	ListByOrganization(ctx context.Context, orgID string) ([]Device, error)
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) ListByOrganization(ctx context.Context, orgID string) ([]Device, error) {
	it := r.fs.Collection("devices").Where("organizationId", "==", orgID).Documents(ctx)
	defer it.Stop()

	out := []Device{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d Device
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		d.ID = doc.Ref.ID
		out = append(out, d)
	}
	return out, nil
}
