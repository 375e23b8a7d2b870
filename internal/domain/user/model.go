package user

import "time"

// Profile is the users/{uid} document of a dashboard operator.
type Profile struct {
	UID         string    `firestore:"uid" json:"uid"`
	Email       string    `firestore:"email,omitempty" json:"email,omitempty"`
	DisplayName string    `firestore:"displayName,omitempty" json:"displayName,omitempty"`
	PhotoURL    string    `firestore:"photoURL,omitempty" json:"photoURL,omitempty"`
	Phone       string    `firestore:"phone,omitempty" json:"phone,omitempty"`
	Role        string    `firestore:"role,omitempty" json:"role,omitempty"`
	LastLoginAt time.Time `firestore:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Identity is what the session check reports about the caller.
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName,omitempty"`
	// Admin mirrors the admin custom claim.
	Admin bool `json:"admin,omitempty"`
}

const RoleAdmin = "admin"
