// Package firebase opens the Firebase app and the clients the backend
// talks to.
package firebase

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gym-manager/backend/internal/config"
)

// Clients bundles what cmd/api and cmd/grant-access need.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

// Open initializes the app and its auth and Firestore clients.
func Open(ctx context.Context, cfg config.Config) (*Clients, error) {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("firebase app init failed: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client init failed: %w", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore init failed: %w", err)
	}
	return &Clients{App: app, Auth: authClient, Firestore: fs}, nil
}

func (c *Clients) Close() {
	if c == nil || c.Firestore == nil {
		return
	}
	_ = c.Firestore.Close()
}

func NewApp(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	appCfg := &firebase.Config{StorageBucket: cfg.StorageBucket}
	if cfg.ProjectID != "" {
		appCfg.ProjectID = cfg.ProjectID
	}
	for _, env := range []string{"FIRESTORE_EMULATOR_HOST", "FIREBASE_AUTH_EMULATOR_HOST"} {
		if host := os.Getenv(env); host != "" {
			log.Printf("[firebase] %s=%s", env, host)
		}
	}
	return firebase.NewApp(ctx, appCfg, clientOptions()...)
}

// clientOptions prefers FIREBASE_SERVICE_ACCOUNT_JSON (raw json) over
// GOOGLE_APPLICATION_CREDENTIALS (file path); neither means ADC.
func clientOptions() []option.ClientOption {
	if json := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); json != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(json))}
	}
	if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		return []option.ClientOption{option.WithCredentialsFile(cred)}
	}
	return nil
}

// IsNotFound reports whether a Firestore call failed because the document
// does not exist.
func IsNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}
