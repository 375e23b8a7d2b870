package trainer

import (
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Trainer lives at organizations/{org}/gyms/{gym}/trainers/{id}.
type Trainer struct {
	ID             string `firestore:"-" json:"id"`
	Name           string `firestore:"name" json:"name"`
	Email          string `firestore:"email" json:"email"`
	Phone          string `firestore:"phone" json:"phone"`
	Specialization string `firestore:"specialization" json:"specialization"`
	Experience     string `firestore:"experience" json:"experience"`
	Certifications string `firestore:"certifications" json:"certifications"`
	Bio            string `firestore:"bio" json:"bio"`
	Status         string `firestore:"status" json:"status"`
	PhotoURL       string `firestore:"photoURL,omitempty" json:"photoURL,omitempty"`
	GymID          string `firestore:"gymId" json:"gymId"`
	GymName        string `firestore:"-" json:"gymName,omitempty"`
	LastActive     string `firestore:"lastActive,omitempty" json:"lastActive,omitempty"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (t Trainer) IsActive() bool { return t.Status == StatusActive }

// Input is the trainer form. Every field is written on create and update.
type Input struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Specialization string `json:"specialization" validate:"required"`
	Experience     string `json:"experience" validate:"required"`
	GymID          string `json:"gymId" validate:"required"`
	Certifications string `json:"certifications,omitempty"`
	Bio            string `json:"bio,omitempty" validate:"max=2000"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	PhotoURL       string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

func (in *Input) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.Experience = strings.TrimSpace(in.Experience)
	in.GymID = strings.TrimSpace(in.GymID)
	in.Certifications = strings.TrimSpace(in.Certifications)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
}

// New builds a trainer from the form, applying defaults.
func New(in Input, now time.Time) Trainer {
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	return Trainer{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Specialization: in.Specialization,
		Experience:     in.Experience,
		Certifications: in.Certifications,
		Bio:            in.Bio,
		Status:         status,
		PhotoURL:       in.PhotoURL,
		GymID:          in.GymID,
		LastActive:     now.Format("2006-01-02"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
