// Package media signs Cloud Storage URLs for exercise images and profile
// photos.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"

	"gym-manager/backend/internal/config"
)

var ErrNotConfigured = errors.New("signed urls are not configured")

const (
	defaultExpiry = 15 * time.Minute
	maxExpiry     = time.Hour
)

// SignedURL is a time-limited link to one object.
type SignedURL struct {
	URL        string `json:"url"`
	Method     string `json:"method"`
	ObjectPath string `json:"objectPath"`
	ExpiresAt  int64  `json:"expiresAt"`
}

type URLSigner interface {
	Upload(ctx context.Context, objectPath, contentType string, ttl time.Duration) (*SignedURL, error)
	Download(ctx context.Context, objectPath string, ttl time.Duration) (*SignedURL, error)
}

// Signer signs V4 URLs with the IAM SignBlob API of a service account.
type Signer struct {
	bucket  string
	account string
	iam     *credentials.IamCredentialsClient
}

func NewSigner(ctx context.Context, cfg config.Config) *Signer {
	// IAM client is optional; without it every call reports ErrNotConfigured.
	iamClient, _ := credentials.NewIamCredentialsClient(ctx)
	return &Signer{bucket: cfg.StorageBucket, account: cfg.SignedURLServiceAccountEmail, iam: iamClient}
}

func (s *Signer) Close() {
	if s != nil && s.iam != nil {
		_ = s.iam.Close()
	}
}

func (s *Signer) Upload(ctx context.Context, objectPath, contentType string, ttl time.Duration) (*SignedURL, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.sign(ctx, http.MethodPut, objectPath, contentType, ttl)
}

func (s *Signer) Download(ctx context.Context, objectPath string, ttl time.Duration) (*SignedURL, error) {
	return s.sign(ctx, http.MethodGet, objectPath, "", ttl)
}

func (s *Signer) sign(ctx context.Context, method, objectPath, contentType string, ttl time.Duration) (*SignedURL, error) {
	if s == nil || s.bucket == "" || s.account == "" || s.iam == nil {
		return nil, ErrNotConfigured
	}
	objectPath = strings.TrimPrefix(objectPath, "/")
	if objectPath == "" {
		return nil, fmt.Errorf("objectPath is required")
	}
	if ttl <= 0 || ttl > maxExpiry {
		ttl = defaultExpiry
	}
	exp := time.Now().Add(ttl)

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         method,
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: s.account,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := s.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.account),
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	url, err := storage.SignedURL(s.bucket, objectPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to sign url (check service account + permissions): %w", err)
	}
	return &SignedURL{URL: url, Method: method, ObjectPath: objectPath, ExpiresAt: exp.Unix()}, nil
}

var photoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoPath is where a trainer or member photo is stored.
func PhotoPath(orgID, gymID, kind, personID, contentType string) (string, error) {
	ext, ok := photoTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	var col string
	switch kind {
	case "trainer":
		col = "trainers"
	case "user":
		col = "users"
	default:
		return "", fmt.Errorf("kind must be trainer or user")
	}
	for _, p := range []string{orgID, gymID, personID} {
		if p == "" || strings.ContainsAny(p, "/\\") || p == "." || p == ".." {
			return "", fmt.Errorf("invalid path segment %q", p)
		}
	}
	return path.Join("organizations", orgID, "gyms", gymID, col, personID, "photo"+ext), nil
}

// ExercisePath is where an exercise illustration is stored.
func ExercisePath(image string) string {
	return path.Join("exercises", path.Base(image))
}
