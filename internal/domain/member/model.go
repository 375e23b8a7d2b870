package member

import (
	"strings"
	"time"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"

	MembershipBasic   = "basic"
	MembershipPremium = "premium"
	MembershipVIP     = "vip"
)

// Member is a gym customer, stored under .../gyms/{gym}/users/{id}.
type Member struct {
	ID                string `firestore:"-" json:"id"`
	Name              string `firestore:"name" json:"name"`
	Email             string `firestore:"email" json:"email"`
	Phone             string `firestore:"phone" json:"phone"`
	Age               string `firestore:"age" json:"age"`
	Gender            string `firestore:"gender" json:"gender"`
	GymID             string `firestore:"gymId" json:"gymId"`
	GymName           string `firestore:"-" json:"gymName,omitempty"`
	MembershipType    string `firestore:"membershipType" json:"membershipType"`
	EmergencyContact  string `firestore:"emergencyContact" json:"emergencyContact"`
	MedicalConditions string `firestore:"medicalConditions" json:"medicalConditions"`
	FitnessGoals      string `firestore:"fitnessGoals" json:"fitnessGoals"`
	// AssignedTrainer is a trainer id in the same gym, or empty.
	AssignedTrainer string `firestore:"assignedTrainer" json:"assignedTrainer"`
	Status          string `firestore:"status" json:"status"`
	PhotoURL        string `firestore:"photoURL,omitempty" json:"photoURL,omitempty"`
	LastActive      string `firestore:"lastActive,omitempty" json:"lastActive,omitempty"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Input is the member form.
type Input struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required"`
	Age               string `json:"age" validate:"required,numeric"`
	Gender            string `json:"gender" validate:"required"`
	GymID             string `json:"gymId" validate:"required"`
	EmergencyContact  string `json:"emergencyContact" validate:"required"`
	MembershipType    string `json:"membershipType,omitempty" validate:"omitempty,oneof=basic premium vip"`
	MedicalConditions string `json:"medicalConditions,omitempty"`
	FitnessGoals      string `json:"fitnessGoals,omitempty"`
	AssignedTrainer   string `json:"assignedTrainer,omitempty"`
	Status            string `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	PhotoURL          string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

func (in *Input) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Age = strings.TrimSpace(in.Age)
	in.Gender = strings.TrimSpace(in.Gender)
	in.GymID = strings.TrimSpace(in.GymID)
	in.EmergencyContact = strings.TrimSpace(in.EmergencyContact)
	in.MembershipType = strings.ToLower(strings.TrimSpace(in.MembershipType))
	in.MedicalConditions = strings.TrimSpace(in.MedicalConditions)
	in.FitnessGoals = strings.TrimSpace(in.FitnessGoals)
	in.AssignedTrainer = strings.TrimSpace(in.AssignedTrainer)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
}

// New builds a member from the form, applying defaults.
func New(in Input, now time.Time) Member {
	m := Member{
		Name:              in.Name,
		Email:             in.Email,
		Phone:             in.Phone,
		Age:               in.Age,
		Gender:            in.Gender,
		GymID:             in.GymID,
		MembershipType:    in.MembershipType,
		EmergencyContact:  in.EmergencyContact,
		MedicalConditions: in.MedicalConditions,
		FitnessGoals:      in.FitnessGoals,
		AssignedTrainer:   in.AssignedTrainer,
		Status:            in.Status,
		PhotoURL:          in.PhotoURL,
		LastActive:        now.Format("2006-01-02"),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if m.MembershipType == "" {
		m.MembershipType = MembershipBasic
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	return m
}

// AssignInput sets or, when TrainerID is empty, clears a member's trainer.
type AssignInput struct {
	OrganizationID string `json:"organizationId"`
	GymID          string `json:"gymId"`
	TrainerID      string `json:"trainerId"`
}
