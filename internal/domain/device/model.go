package device

import "strings"

const (
	StatusActive      = "active"
	StatusInventory   = "inventory"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Device is a piece of gym hardware. Devices live in the top-level
// devices collection and point back to their organization and gym.
type Device struct {
	ID             string `firestore:"-" json:"id"`
	ModelNo        string `firestore:"modelNo" json:"modelNo"`
	Serial         string `firestore:"serial" json:"serial"`
	Lens           string `firestore:"lens,omitempty" json:"lens,omitempty"`
	Status         string `firestore:"status" json:"status"`
	OrganizationID string `firestore:"organizationId" json:"organizationId"`
	GymID          string `firestore:"gymId" json:"gymId"`
	GymName        string `firestore:"gymName" json:"gymName"`
	IPAddress      string `firestore:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

// NormalizedStatus lowercases the stored status; older documents were
// written with mixed case.
func (d Device) NormalizedStatus() string {
	return strings.ToLower(strings.TrimSpace(d.Status))
}

type StatusCounts struct {
	Active      int `json:"active"`
	Inventory   int `json:"inventory"`
	Maintenance int `json:"maintenance"`
	Retired     int `json:"retired"`
}

func CountByStatus(devices []Device) StatusCounts {
	var c StatusCounts
	for _, d := range devices {
		switch d.NormalizedStatus() {
		case StatusActive:
			c.Active++
		case StatusInventory:
			c.Inventory++
		case StatusMaintenance:
			c.Maintenance++
		case StatusRetired:
			c.Retired++
		}
	}
	return c
}
