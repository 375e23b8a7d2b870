package dashboard

import (
	"context"

	"gym-manager/backend/internal/domain/device"
)

type DeviceAPI interface {
	ListDevices(ctx context.Context, orgID string, gymIDs []string) ([]device.Device, error)
}

type DevicePanel struct {
	s    *Session
	api  DeviceAPI
	list list[device.Device]
}

func NewDevicePanel(s *Session, api DeviceAPI) *DevicePanel {
	return &DevicePanel{s: s, api: api}
}

func (p *DevicePanel) Refresh(ctx context.Context) error {
	gen := p.list.begin()
	items, err := p.api.ListDevices(ctx, p.s.OrganizationID(), p.s.GymIDs())
	if err != nil {
		return &OperationError{Op: "fetch devices", Err: err}
	}
	p.list.apply(gen, items, nil)
	return nil
}

// List returns devices of gymID; "" or "all" returns every device.
func (p *DevicePanel) List(gymID string) []device.Device {
	return p.list.filter(func(d device.Device) bool { return matchAll(gymID, d.GymID) })
}

func (p *DevicePanel) Counts(gymID string) device.StatusCounts {
	return device.CountByStatus(p.List(gymID))
}
