package workout

import (
	"strconv"
	"strings"

	"gym-manager/backend/internal/utils"
)

type MuscleGroup struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Exercise struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	MuscleID int    `json:"muscleId"`
	Muscle   string `json:"muscle"`
	Image    string `json:"image,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var MuscleGroups = []MuscleGroup{
	{ID: 1, Name: "Chest", Image: "chest.png"},
	{ID: 2, Name: "Back", Image: "back.png"},
	{ID: 3, Name: "Shoulders", Image: "shoulder.png"},
	{ID: 4, Name: "Biceps", Image: "biceps.png"},
	{ID: 5, Name: "Triceps", Image: "triceps.png"},
	{ID: 6, Name: "Legs", Image: "leg.png"},
	{ID: 7, Name: "Core", Image: "core.png"},
}

var Library = []Exercise{
	{ID: 1, Name: "Bench Press", MuscleID: 1, Muscle: "Chest", Image: "benchpress.png"},
	{ID: 2, Name: "Dumbbell Fly", MuscleID: 1, Muscle: "Chest", Image: "dbflys.png"},
	{ID: 3, Name: "Push-ups", MuscleID: 1, Muscle: "Chest", Image: "pushups.png"},
	{ID: 4, Name: "Incline Press", MuscleID: 1, Muscle: "Chest"},
	{ID: 5, Name: "Pull-Ups", MuscleID: 2, Muscle: "Back", Image: "pullups.png"},
	{ID: 6, Name: "Barbell Rows", MuscleID: 2, Muscle: "Back"},
	{ID: 7, Name: "Lat Pulldown", MuscleID: 2, Muscle: "Back", Image: "latpulldown.png"},
	{ID: 8, Name: "Deadlift", MuscleID: 2, Muscle: "Back", Image: "deadlift.png"},
	{ID: 9, Name: "Overhead Press", MuscleID: 3, Muscle: "Shoulders", Image: "overheadpress.png"},
	{ID: 10, Name: "Lateral Raises", MuscleID: 3, Muscle: "Shoulders", Image: "lateralraise.png"},
	{ID: 11, Name: "Front Raises", MuscleID: 3, Muscle: "Shoulders", Image: "frontraise.png"},
	{ID: 12, Name: "Barbell Curl", MuscleID: 4, Muscle: "Biceps", Image: "barbellcurl.png"},
	{ID: 13, Name: "Hammer Curl", MuscleID: 4, Muscle: "Biceps", Image: "hammercurl.png"},
	{ID: 14, Name: "Preacher Curl", MuscleID: 4, Muscle: "Biceps", Image: "preacher.png"},
	{ID: 15, Name: "Tricep Pushdown", MuscleID: 5, Muscle: "Triceps", Image: "triceppushdown.png"},
	{ID: 16, Name: "Overhead Extension", MuscleID: 5, Muscle: "Triceps", Image: "overheadext.png"},
	{ID: 17, Name: "Dips", MuscleID: 5, Muscle: "Triceps", Image: "dips.png"},
	{ID: 18, Name: "Squats", MuscleID: 6, Muscle: "Legs", Image: "squats.png"},
	{ID: 19, Name: "Lunges", MuscleID: 6, Muscle: "Legs", Image: "lunges.png"},
	{ID: 20, Name: "Leg Press", MuscleID: 6, Muscle: "Legs", Image: "legpress.png"},
	{ID: 21, Name: "Romanian Deadlift", MuscleID: 6, Muscle: "Legs", Image: "romaniandeadlift.png"},
	{ID: 22, Name: "Plank", MuscleID: 7, Muscle: "Core", Image: "plank.png"},
	{ID: 23, Name: "Crunches", MuscleID: 7, Muscle: "Core", Image: "crunches.png"},
	{ID: 24, Name: "Russian Twists", MuscleID: 7, Muscle: "Core", Image: "russiantwist.png"},
}

// FilterExercises matches exercise names against search and keeps one
// muscle group; muscle may be "all", "", a group id or a group name.
func FilterExercises(search, muscle string) []Exercise {
	muscle = strings.TrimSpace(muscle)
	mid := 0
	if muscle != "" && !strings.EqualFold(muscle, "all") {
		if n, err := strconv.Atoi(muscle); err == nil {
			mid = n
		} else if g, ok := muscleByName(muscle); ok {
			mid = g.ID
		} else {
			return []Exercise{}
		}
	}

	out := []Exercise{}
	for _, e := range Library {
		if mid != 0 && e.MuscleID != mid {
			continue
		}
		if !utils.ContainsFold(search, e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func FindExercise(id int) (Exercise, bool) {
	for _, e := range Library {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

func FindMuscle(id int) (MuscleGroup, bool) {
	for _, g := range MuscleGroups {
		if g.ID == id {
			return g, true
		}
	}
	return MuscleGroup{}, false
}

func muscleByName(name string) (MuscleGroup, bool) {
	for _, g := range MuscleGroups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return MuscleGroup{}, false
}

// CanonicalDay maps "monday" or "Mon" to "Monday".
func CanonicalDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return "", false
	}
	for _, d := range Days {
		if strings.EqualFold(d, s) || strings.EqualFold(d[:3], s) {
			return d, true
		}
	}
	return "", false
}
