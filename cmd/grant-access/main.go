// Command grant-access registers an email as an admin of a gym and, when the
// account already exists, marks it with the admin custom claim.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/firebase"
)

func main() {
	orgID := flag.String("org", "", "organization id")
	gymID := flag.String("gym", "", "gym id")
	email := flag.String("email", "", "admin email")
	flag.Parse()
	if *orgID == "" || *gymID == "" || *email == "" {
		log.Fatal("usage: grant-access -org=ORG -gym=GYM -email=admin@example.com")
	}

	ctx := context.Background()
	cfg := config.Load()

	fb, err := firebase.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer fb.Close()
	authClient := fb.Auth

	svc := gym.NewService(gym.NewRepo(fb.Firestore), user.NewRepo(fb.Firestore))
	in := gym.RegisterAdminInput{OrganizationID: *orgID, GymID: *gymID, Email: *email}
	if err := svc.RegisterAdmin(ctx, in); err != nil {
		log.Fatalf("register admin: %v", err)
	}

	u, err := authClient.GetUserByEmail(ctx, gym.NormalizeEmail(*email))
	if err != nil {
		if auth.IsUserNotFound(err) {
			fmt.Printf("ok: %s registered for %s/%s (no account yet, claims skipped)\n", *email, *orgID, *gymID)
			return
		}
		log.Fatalf("GetUserByEmail: %v", err)
	}

	claims := map[string]any{}
	for k, v := range u.CustomClaims {
		claims[k] = v
	}
	claims["admin"] = true
	claims["role"] = "admin"
	claims["claimsUpdatedAt"] = time.Now().Unix()
	if err := authClient.SetCustomUserClaims(ctx, u.UID, claims); err != nil {
		log.Fatalf("SetCustomUserClaims: %v", err)
	}

	fmt.Printf("ok: %s registered for %s/%s, admin claims set for %s\n", *email, *orgID, *gymID, u.UID)
}
