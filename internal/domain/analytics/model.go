package analytics

import "gym-manager/backend/internal/scope"

// Person is anyone attendance can be taken for.
type Person struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // trainer | user
	GymID   string `json:"gymId"`
	GymName string `json:"gymName,omitempty"`
	Status  string `json:"status,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Summary classifies every in-scope person for one day. Present, Late and
// Absent always add up to Total.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Rate    int `json:"rate"`
}

type DayCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
}

type DayTrend struct {
	Date    string `json:"date"`
	Day     string `json:"day"`
	Present int    `json:"present"`
}

type GymRate struct {
	GymID   string `json:"gymId"`
	GymName string `json:"gymName"`
	People  int    `json:"people"`
	Present int    `json:"present"`
	Rate    int    `json:"rate"`
}

// Report is the attendance stats for one day across a gym scope.
type Report struct {
	Date       string          `json:"date"`
	Summary    Summary         `json:"summary"`
	Gyms       []GymRate       `json:"gyms"`
	Weekly     []DayTrend      `json:"weekly"`
	FailedGyms []scope.Failure `json:"failedGyms,omitempty"`
}
