package workout

import "time"

// Entry puts one exercise into a day and muscle slot of a plan.
type Entry struct {
	DayName    string `firestore:"dayName" json:"day_name"`
	MuscleID   int    `firestore:"muscleId" json:"muscle_id"`
	ExerciseID int    `firestore:"exerciseId" json:"exercise_id"`
	Position   int    `firestore:"position" json:"position"`
}

func (e Entry) sameSlot(o Entry) bool {
	return e.DayName == o.DayName && e.MuscleID == o.MuscleID && e.ExerciseID == o.ExerciseID
}

// Plan is a trainer's weekly schedule for one member, stored at
// organizations/{org}/gyms/{gym}/workoutPlans/{id}.
type Plan struct {
	ID             string    `firestore:"id" json:"planId"`
	OrganizationID string    `firestore:"organizationId" json:"organizationId"`
	GymID          string    `firestore:"gymId" json:"gymId"`
	TrainerID      string    `firestore:"trainerId" json:"trainerId"`
	MemberID       string    `firestore:"memberId" json:"userId"`
	Entries        []Entry   `firestore:"entries" json:"workouts"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// AutoSaveInput is one drop of an exercise onto a slot.
type AutoSaveInput struct {
	PlanID     string `json:"planId" validate:"required,uuid4"`
	DayName    string `json:"dayName" validate:"required"`
	MuscleID   int    `json:"muscleId" validate:"required,min=1"`
	ExerciseID int    `json:"exerciseId" validate:"required,min=1"`
	Position   int    `json:"position" validate:"min=0"`
}
