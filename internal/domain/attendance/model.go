package attendance

import (
	"strings"
	"time"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"

	PersonTrainer = "trainer"
	PersonUser    = "user"
)

// Record is one attendance mark at .../gyms/{gym}/attendance/{id}.
// Nothing prevents two records for the same person and date.
type Record struct {
	ID         string    `firestore:"-" json:"id"`
	PersonID   string    `firestore:"personId" json:"personId"`
	PersonName string    `firestore:"personName" json:"personName"`
	PersonType string    `firestore:"personType" json:"personType"`
	Status     string    `firestore:"status" json:"status"`
	Date       string    `firestore:"date" json:"date"`
	Notes      string    `firestore:"notes" json:"notes"`
	GymID      string    `firestore:"gymId" json:"gymId"`
	GymName    string    `firestore:"-" json:"gymName,omitempty"`
	MarkedBy   string    `firestore:"markedBy" json:"markedBy"`
	Timestamp  time.Time `firestore:"timestamp" json:"timestamp"`
}

// MarkInput is one mark request.
type MarkInput struct {
	PersonID   string `json:"personId" validate:"required"`
	PersonName string `json:"personName" validate:"required"`
	PersonType string `json:"personType" validate:"required,oneof=trainer user"`
	Status     string `json:"status" validate:"required,oneof=present absent late"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes      string `json:"notes,omitempty" validate:"max=500"`
	GymID      string `json:"gymId" validate:"required"`
}

func (in *MarkInput) Trim() {
	in.PersonID = strings.TrimSpace(in.PersonID)
	in.PersonName = strings.TrimSpace(in.PersonName)
	in.PersonType = strings.ToLower(strings.TrimSpace(in.PersonType))
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.Date = strings.TrimSpace(in.Date)
	in.GymID = strings.TrimSpace(in.GymID)
}

// BulkInput marks several people of one gym for the same day.
type BulkInput struct {
	GymID   string      `json:"gymId"`
	Date    string      `json:"date"`
	Records []MarkInput `json:"records"`
}

// UpdateInput corrects the status or notes of an existing record.
type UpdateInput struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (in *UpdateInput) Trim() {
	if in.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*in.Status))
		in.Status = &s
	}
}

// DateFilter selects records by exact day or inclusive range.
type DateFilter struct {
	Date string
	From string
	To   string
}

func (f DateFilter) Match(date string) bool {
	if f.Date != "" {
		return date == f.Date
	}
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}
	return true
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}
