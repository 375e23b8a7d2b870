package analytics

import (
	"math"
	"time"

	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/scope"
	"gym-manager/backend/internal/utils"
)

// People merges trainers and members into one list, trainers first.
func People(trainers []trainer.Trainer, members []member.Member) []Person {
	out := make([]Person, 0, len(trainers)+len(members))
	for _, t := range trainers {
		out = append(out, Person{ID: t.ID, Name: t.Name, Type: attendance.PersonTrainer, GymID: t.GymID, GymName: t.GymName, Status: t.Status, Email: t.Email})
	}
	for _, m := range members {
		out = append(out, Person{ID: m.ID, Name: m.Name, Type: attendance.PersonUser, GymID: m.GymID, GymName: m.GymName, Status: m.Status, Email: m.Email})
	}
	return out
}

// FilterPeople keeps people of one gym and one type; "" or "all" match any.
func FilterPeople(people []Person, gymID, personType string) []Person {
	out := []Person{}
	for _, p := range people {
		if gymID != "" && gymID != "all" && p.GymID != gymID {
			continue
		}
		if personType != "" && personType != "all" && p.Type != personType {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FirstStatus returns each person's status from their first record.
// Later duplicates for the same person are ignored.
func FirstStatus(records []attendance.Record) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		if _, seen := out[r.PersonID]; !seen {
			out[r.PersonID] = r.Status
		}
	}
	return out
}

// Summarize classifies each person by their first record. People without
// a record count as absent; records for people outside the list are ignored.
func Summarize(people []Person, records []attendance.Record) Summary {
	first := FirstStatus(records)
	var s Summary
	seen := make(map[string]bool, len(people))
	for _, p := range people {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		switch first[p.ID] {
		case attendance.StatusPresent:
			s.Present++
		case attendance.StatusLate:
			s.Late++
		}
	}
	s.Total = len(seen)
	s.Absent = s.Total - s.Present - s.Late
	s.Rate = Rate(s.Present, s.Total)
	return s
}

// Rate is round(part/total*100), 0 when total is 0.
func Rate(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// CalendarCounts tallies records per day and status.
func CalendarCounts(records []attendance.Record) map[string]DayCounts {
	out := map[string]DayCounts{}
	for _, r := range records {
		c := out[r.Date]
		switch r.Status {
		case attendance.StatusPresent:
			c.Present++
		case attendance.StatusAbsent:
			c.Absent++
		case attendance.StatusLate:
			c.Late++
		default:
			continue
		}
		out[r.Date] = c
	}
	return out
}

// WeeklyTrend returns the present count of the 7 days ending today, oldest
// first. Days missing from the calendar report 0.
func WeeklyTrend(today time.Time, calendar map[string]DayCounts) []DayTrend {
	out := make([]DayTrend, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		key := d.Format(utils.DateLayout)
		out = append(out, DayTrend{Date: key, Day: d.Format("Mon"), Present: calendar[key].Present})
	}
	return out
}

// GymPerformance computes the present rate of each gym over its own people,
// in input gym order.
func GymPerformance(gyms []scope.Ref, people []Person, records []attendance.Record) []GymRate {
	first := FirstStatus(records)

	idx := map[string]int{}
	out := make([]GymRate, 0, len(gyms))
	for _, g := range gyms {
		if _, dup := idx[g.ID]; dup {
			continue
		}
		idx[g.ID] = len(out)
		out = append(out, GymRate{GymID: g.ID, GymName: g.Name})
	}

	seen := map[string]bool{}
	for _, p := range people {
		i, ok := idx[p.GymID]
		if !ok || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out[i].People++
		if first[p.ID] == attendance.StatusPresent {
			out[i].Present++
		}
	}
	for i := range out {
		out[i].Rate = Rate(out[i].Present, out[i].People)
	}
	return out
}
