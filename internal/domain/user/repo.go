package user

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	fb "gym-manager/backend/internal/firebase"
)

var ErrNotFound = errors.New("profile not found")

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) Get(ctx context.Context, uid string) (*Profile, error) {
	doc, err := r.fs.Collection("users").Doc(uid).Get(ctx)
	if err != nil {
		if fb.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var p Profile
	if err := doc.DataTo(&p); err != nil {
		return nil, err
	}
	if p.UID == "" {
		p.UID = uid
	}
	return &p, nil
}

// TouchLogin records a sign-in, creating the profile when missing.
func (r *Repo) TouchLogin(ctx context.Context, id Identity) error {
	now := time.Now().UTC()
	data := map[string]any{
		"uid":         id.UID,
		"email":       id.Email,
		"lastLoginAt": now,
		"updatedAt":   now,
	}
	if id.DisplayName != "" {
		data["displayName"] = id.DisplayName
	}
	if id.Admin {
		data["role"] = RoleAdmin
	}
	_, err := r.fs.Collection("users").Doc(id.UID).Set(ctx, data, firestore.MergeAll)
	return err
}

// Create writes the profile of a newly signed-up account.
func (r *Repo) Create(ctx context.Context, p Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.fs.Collection("users").Doc(p.UID).Set(ctx, p)
	return err
}
