// Package store keeps every collection of the backend in process memory.
// It satisfies the Store interfaces of the domain packages and backs
// handler tests and local runs without Firestore.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/device"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/domain/workout"
)

// Memory groups one store per collection. All of them share a lock.
type Memory struct {
	Gyms       *Gyms
	Profiles   *Profiles
	Trainers   *Trainers
	Members    *Members
	Attendance *Attendance
	Devices    *Devices
	Plans      *Plans

	db *db
}

type db struct {
	mu       sync.Mutex
	seq      int
	failures map[string]error // gymID -> error for per-gym reads

	orgs       map[string]gym.Organization
	gyms       []gym.Gym
	profiles   map[string]user.Profile
	trainers   map[string]trainer.Trainer // org/gym/id
	members    map[string]member.Member
	attendance map[string]attendance.Record
	devices    []device.Device
	plans      map[string]workout.Plan // planID
}

func NewMemory() *Memory {
	d := &db{
		failures:   map[string]error{},
		orgs:       map[string]gym.Organization{},
		profiles:   map[string]user.Profile{},
		trainers:   map[string]trainer.Trainer{},
		members:    map[string]member.Member{},
		attendance: map[string]attendance.Record{},
		plans:      map[string]workout.Plan{},
	}
	return &Memory{
		Gyms:       &Gyms{d},
		Profiles:   &Profiles{d},
		Trainers:   &Trainers{d},
		Members:    &Members{d},
		Attendance: &Attendance{d},
		Devices:    &Devices{d},
		Plans:      &Plans{d},
		db:         d,
	}
}

// FailGym makes every per-gym read of gymID return err until cleared with
// a nil err.
func (m *Memory) FailGym(gymID string, err error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if err == nil {
		delete(m.db.failures, gymID)
		return
	}
	m.db.failures[gymID] = err
}

// AddOrganization seeds an organization with its gyms.
func (m *Memory) AddOrganization(org gym.Organization, gyms ...gym.Gym) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.orgs[org.ID] = org
	for _, g := range gyms {
		g.OrganizationID = org.ID
		m.db.gyms = append(m.db.gyms, g)
	}
}

// AddDevice seeds a device.
func (m *Memory) AddDevice(d device.Device) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if d.ID == "" {
		d.ID = m.db.nextID("dev")
	}
	m.db.devices = append(m.db.devices, d)
}

// nextID returns prefix-N with N increasing; lists sort by N to keep
// creation order.
func (d *db) nextID(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s-%d", prefix, d.seq)
}

func key(orgID, gymID, id string) string {
	return orgID + "/" + gymID + "/" + id
}

// ===== gyms =====

type Gyms struct{ *db }

func (s *Gyms) GymsByAdminEmail(_ context.Context, email string) ([]gym.Gym, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gym.Gym{}
	for _, g := range s.gyms {
		for _, e := range g.AdminEmails {
			if e == email {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (s *Gyms) ListGyms(_ context.Context, orgID string) ([]gym.Gym, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gym.Gym{}
	for _, g := range s.gyms {
		if g.OrganizationID == orgID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Gyms) GetOrganization(_ context.Context, orgID string) (*gym.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return nil, gym.ErrNotFound
	}
	return &o, nil
}

func (s *Gyms) AddAdminEmail(_ context.Context, orgID, gymID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gyms {
		g := &s.gyms[i]
		if g.OrganizationID != orgID || g.ID != gymID {
			continue
		}
		for _, e := range g.AdminEmails {
			if e == email {
				return nil
			}
		}
		g.AdminEmails = append(g.AdminEmails, email)
		return nil
	}
	return gym.ErrNotFound
}

// ===== profiles =====

type Profiles struct{ *db }

func (s *Profiles) Get(_ context.Context, uid string) (*user.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &p, nil
}

func (s *Profiles) TouchLogin(_ context.Context, id user.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := s.profiles[id.UID]
	p.UID = id.UID
	p.Email = id.Email
	if id.DisplayName != "" {
		p.DisplayName = id.DisplayName
	}
	if id.Admin {
		p.Role = user.RoleAdmin
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.LastLoginAt = now
	p.UpdatedAt = now
	s.profiles[id.UID] = p
	return nil
}

func (s *Profiles) Create(_ context.Context, p user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.profiles[p.UID] = p
	return nil
}

// ===== trainers =====

type Trainers struct{ *db }

func (s *Trainers) List(_ context.Context, orgID, gymID string) ([]trainer.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[gymID]; err != nil {
		return nil, err
	}
	out := []trainer.Trainer{}
	for k, t := range s.trainers {
		if k == key(orgID, gymID, t.ID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return seqOf(out[i].ID) < seqOf(out[j].ID) })
	return out, nil
}

func (s *Trainers) Get(_ context.Context, orgID, gymID, id string) (*trainer.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trainers[key(orgID, gymID, id)]
	if !ok {
		return nil, trainer.ErrNotFound
	}
	return &t, nil
}

func (s *Trainers) Create(_ context.Context, orgID string, t trainer.Trainer) (*trainer.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID("trainer")
	s.trainers[key(orgID, t.GymID, t.ID)] = t
	return &t, nil
}

func (s *Trainers) Replace(_ context.Context, orgID, fromGymID string, t trainer.Trainer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := key(orgID, fromGymID, t.ID)
	if _, ok := s.trainers[from]; !ok {
		return trainer.ErrNotFound
	}
	delete(s.trainers, from)
	s.trainers[key(orgID, t.GymID, t.ID)] = t
	return nil
}

func (s *Trainers) Delete(_ context.Context, orgID, gymID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(orgID, gymID, id)
	if _, ok := s.trainers[k]; !ok {
		return trainer.ErrNotFound
	}
	delete(s.trainers, k)
	return nil
}

// ===== members =====

type Members struct{ *db }

func (s *Members) List(_ context.Context, orgID, gymID string) ([]member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[gymID]; err != nil {
		return nil, err
	}
	out := []member.Member{}
	for k, m := range s.members {
		if k == key(orgID, gymID, m.ID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return seqOf(out[i].ID) < seqOf(out[j].ID) })
	return out, nil
}

func (s *Members) Get(_ context.Context, orgID, gymID, id string) (*member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[key(orgID, gymID, id)]
	if !ok {
		return nil, member.ErrNotFound
	}
	return &m, nil
}

func (s *Members) Create(_ context.Context, orgID string, m member.Member) (*member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID("member")
	s.members[key(orgID, m.GymID, m.ID)] = m
	return &m, nil
}

func (s *Members) Replace(_ context.Context, orgID, fromGymID string, m member.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := key(orgID, fromGymID, m.ID)
	if _, ok := s.members[from]; !ok {
		return member.ErrNotFound
	}
	delete(s.members, from)
	s.members[key(orgID, m.GymID, m.ID)] = m
	return nil
}

func (s *Members) SetAssignedTrainer(_ context.Context, orgID, gymID, id, trainerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(orgID, gymID, id)
	m, ok := s.members[k]
	if !ok {
		return member.ErrNotFound
	}
	m.AssignedTrainer = trainerID
	m.UpdatedAt = time.Now().UTC()
	s.members[k] = m
	return nil
}

func (s *Members) Delete(_ context.Context, orgID, gymID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(orgID, gymID, id)
	if _, ok := s.members[k]; !ok {
		return member.ErrNotFound
	}
	delete(s.members, k)
	return nil
}

// ===== attendance =====

type Attendance struct{ *db }

func (s *Attendance) Create(_ context.Context, orgID string, rec attendance.Record) (*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID("att")
	s.attendance[key(orgID, rec.GymID, rec.ID)] = rec
	return &rec, nil
}

func (s *Attendance) CreateMany(ctx context.Context, orgID string, recs []attendance.Record) ([]attendance.Record, error) {
	out := make([]attendance.Record, 0, len(recs))
	for _, rec := range recs {
		created, err := s.Create(ctx, orgID, rec)
		if err != nil {
			return out, err
		}
		out = append(out, *created)
	}
	return out, nil
}

func (s *Attendance) Update(_ context.Context, orgID, gymID, id string, updates map[string]any) (*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(orgID, gymID, id)
	rec, ok := s.attendance[k]
	if !ok {
		return nil, attendance.ErrNotFound
	}
	if v, ok := updates["status"].(string); ok {
		rec.Status = v
	}
	if v, ok := updates["notes"].(string); ok {
		rec.Notes = v
	}
	if v, ok := updates["timestamp"].(time.Time); ok {
		rec.Timestamp = v
	}
	s.attendance[k] = rec
	return &rec, nil
}

func (s *Attendance) List(_ context.Context, orgID, gymID string, f attendance.DateFilter) ([]attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[gymID]; err != nil {
		return nil, err
	}
	out := []attendance.Record{}
	for k, rec := range s.attendance {
		if k == key(orgID, gymID, rec.ID) && f.Match(rec.Date) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return seqOf(out[i].ID) < seqOf(out[j].ID) })
	return out, nil
}

func seqOf(id string) int {
	n, _ := strconv.Atoi(id[strings.LastIndex(id, "-")+1:])
	return n
}

// ===== devices =====

type Devices struct{ *db }

func (s *Devices) ListByOrganization(_ context.Context, orgID string) ([]device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []device.Device{}
	for _, d := range s.devices {
		if d.OrganizationID == orgID {
			out = append(out, d)
		}
	}
	return out, nil
}

// ===== workout plans =====

type Plans struct{ *db }

func (s *Plans) FindPlan(_ context.Context, orgID, gymID, trainerID, memberID string) (*workout.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.OrganizationID == orgID && p.GymID == gymID && p.TrainerID == trainerID && p.MemberID == memberID {
			p.Entries = append([]workout.Entry(nil), p.Entries...)
			return &p, nil
		}
	}
	return nil, workout.ErrNotFound
}

func (s *Plans) CreatePlan(_ context.Context, p workout.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[p.ID]; ok {
		return fmt.Errorf("%w: plan %s", workout.ErrAlreadyExists, p.ID)
	}
	s.plans[p.ID] = p
	return nil
}

func (s *Plans) GetPlan(_ context.Context, planID string) (*workout.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("%w: plan not found", workout.ErrNotFound)
	}
	p.Entries = append([]workout.Entry(nil), p.Entries...)
	return &p, nil
}

func (s *Plans) Mutate(_ context.Context, planID string, fn func(p *workout.Plan) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return fmt.Errorf("%w: plan not found", workout.ErrNotFound)
	}
	p.Entries = append([]workout.Entry(nil), p.Entries...)
	changed, err := fn(&p)
	if err != nil || !changed {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	s.plans[planID] = p
	return nil
}
