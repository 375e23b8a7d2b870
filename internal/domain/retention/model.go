package retention

import (
	"errors"
	"fmt"
	"time"

	"gym-manager/backend/internal/scope"
)

var ErrBadRequest = errors.New("bad request")

func IsErrBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskWarning  RiskLevel = "warning"
	RiskWatch    RiskLevel = "watch"
)

// Settings tune when a member counts as drifting away. A member is
// watched after ThresholdDays*WatchRatio days without attending, warned
// after ThresholdDays and critical after ThresholdDays*CriticalMultiplier.
type Settings struct {
	ThresholdDays      int     `json:"thresholdDays"`
	CriticalMultiplier float64 `json:"criticalMultiplier"`
	WatchRatio         float64 `json:"watchRatio"`
}

func DefaultSettings() Settings {
	return Settings{ThresholdDays: 10, CriticalMultiplier: 2.0, WatchRatio: 0.7}
}

func (s Settings) Validate() error {
	if s.ThresholdDays < 1 {
		return fmt.Errorf("%w: thresholdDays must be >= 1", ErrBadRequest)
	}
	if s.CriticalMultiplier < 1.0 {
		return fmt.Errorf("%w: criticalMultiplier must be >= 1.0", ErrBadRequest)
	}
	if s.WatchRatio < 0.1 || s.WatchRatio > 1.0 {
		return fmt.Errorf("%w: watchRatio must be between 0.1 and 1.0", ErrBadRequest)
	}
	return nil
}

// Alert is one member at risk.
type Alert struct {
	MemberID         string `json:"memberId"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	GymID            string `json:"gymId"`
	GymName          string `json:"gymName,omitempty"`
	AssignedTrainer  string `json:"assignedTrainer,omitempty"`
	LastAttendedDate string `json:"lastAttendedDate"`
	// DaysSinceLastAttendance is -1 when the member did not attend within
	// the scanned window.
	DaysSinceLastAttendance int       `json:"daysSinceLastAttendance"`
	Visits                  int       `json:"visits"`
	RiskLevel               RiskLevel `json:"riskLevel"`
}

type Stats struct {
	TotalMembers int `json:"totalMembers"`
	TotalAtRisk  int `json:"totalAtRisk"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Watch        int `json:"watch"`
}

// Report is the result of one scan over a gym scope.
type Report struct {
	AsOf       string          `json:"asOf"`
	Settings   Settings        `json:"settings"`
	Alerts     []Alert         `json:"alerts"`
	Stats      Stats           `json:"stats"`
	ScannedAt  time.Time       `json:"scannedAt"`
	FailedGyms []scope.Failure `json:"failedGyms,omitempty"`
}
