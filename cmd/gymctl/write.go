package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gym-manager/backend/internal/dashboard"
	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/trainer"
)

type writeFunc func(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error

var writeCommands = map[string]writeFunc{
	"trainer-add": trainerAdd,
	"trainer-rm":  trainerRemove,
	"member-add":  memberAdd,
	"member-rm":   memberRemove,
	"assign":      assign,
	"mark":        mark,
}

var errMissingFlag = errors.New("missing required flag")

// console is where write commands print results and read confirmations.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// confirm asks a y/N question. Anything but y or yes declines.
func (c *console) confirm(question string) bool {
	fmt.Fprintf(c.out, "%s [y/N] ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newWriteFlags(cmd string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func required(vals map[string]string) error {
	for name, v := range vals {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w -%s", errMissingFlag, name)
		}
	}
	return nil
}

func trainerAdd(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("trainer-add", con.out)
	var in trainer.Input
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Specialization, "specialization", "", "e.g. Strength")
	fs.StringVar(&in.Experience, "experience", "", "e.g. 5 years")
	fs.StringVar(&in.Certifications, "certifications", "", "certifications")
	fs.StringVar(&in.GymID, "gym", "", "gym id")
	fs.StringVar(&in.Status, "status", "", "active or inactive (default active)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"gym": in.GymID}); err != nil {
		return err
	}

	p := dashboard.NewTrainerPanel(s, c)
	t, err := p.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(con.out, "created trainer %s (%s)\n", t.ID, t.Name)
	return nil
}

func trainerRemove(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("trainer-rm", con.out)
	id := fs.String("id", "", "trainer id")
	yes := fs.Bool("yes", false, "skip the confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"id": *id}); err != nil {
		return err
	}

	p := dashboard.NewTrainerPanel(s, c)
	if err := p.Refresh(ctx); err != nil {
		return err
	}
	t, ok := p.Find(*id)
	if !ok {
		return fmt.Errorf("trainer %s not found", *id)
	}
	deleted, err := p.Delete(ctx, t, func(t trainer.Trainer) bool {
		return *yes || con.confirm(fmt.Sprintf("delete trainer %s <%s> from %s?", t.Name, t.Email, t.GymName))
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(con.out, "cancelled")
		return nil
	}
	fmt.Fprintf(con.out, "deleted trainer %s\n", t.ID)
	return nil
}

func memberAdd(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("member-add", con.out)
	var in member.Input
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Age, "age", "", "age in years")
	fs.StringVar(&in.Gender, "gender", "", "gender")
	fs.StringVar(&in.EmergencyContact, "emergency", "", "emergency contact")
	fs.StringVar(&in.MembershipType, "membership", "", "basic, premium or vip (default basic)")
	fs.StringVar(&in.FitnessGoals, "goals", "", "fitness goals")
	fs.StringVar(&in.AssignedTrainer, "trainer", "", "trainer id in the same gym")
	fs.StringVar(&in.GymID, "gym", "", "gym id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"gym": in.GymID}); err != nil {
		return err
	}

	p := dashboard.NewMemberPanel(s, c)
	m, err := p.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(con.out, "created member %s (%s)\n", m.ID, m.Name)
	return nil
}

func memberRemove(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("member-rm", con.out)
	id := fs.String("id", "", "member id")
	yes := fs.Bool("yes", false, "skip the confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"id": *id}); err != nil {
		return err
	}

	p := dashboard.NewMemberPanel(s, c)
	if err := p.Refresh(ctx); err != nil {
		return err
	}
	m, ok := p.Find(*id)
	if !ok {
		return fmt.Errorf("member %s not found", *id)
	}
	deleted, err := p.Delete(ctx, m, func(m member.Member) bool {
		return *yes || con.confirm(fmt.Sprintf("delete member %s <%s> from %s?", m.Name, m.Email, m.GymName))
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(con.out, "cancelled")
		return nil
	}
	fmt.Fprintf(con.out, "deleted member %s\n", m.ID)
	return nil
}

func assign(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("assign", con.out)
	memberID := fs.String("member", "", "member id")
	trainerID := fs.String("trainer", "", "trainer id; empty clears the assignment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"member": *memberID}); err != nil {
		return err
	}

	tp, mp := dashboard.NewTrainerPanel(s, c), dashboard.NewMemberPanel(s, c)
	if err := dashboard.RefreshAll(ctx, tp, mp); err != nil {
		return err
	}
	m, ok := mp.Find(*memberID)
	if !ok {
		return fmt.Errorf("member %s not found", *memberID)
	}
	if *trainerID != "" {
		eligible := false
		for _, t := range dashboard.EligibleTrainers(tp.All(), m) {
			eligible = eligible || t.ID == *trainerID
		}
		if !eligible {
			return fmt.Errorf("trainer %s is not an active trainer of %s", *trainerID, m.GymName)
		}
	}
	if err := mp.Assign(ctx, m, *trainerID); err != nil {
		return err
	}
	if *trainerID == "" {
		fmt.Fprintf(con.out, "cleared trainer of %s\n", m.Name)
		return nil
	}
	fmt.Fprintf(con.out, "assigned %s to %s\n", m.Name, *trainerID)
	return nil
}

func mark(ctx context.Context, c *dashboard.Client, s *dashboard.Session, args []string, con *console) error {
	fs := newWriteFlags("mark", con.out)
	personID := fs.String("person", "", "trainer or member id")
	status := fs.String("status", "", "present, absent or late")
	notes := fs.String("notes", "", "optional notes")
	date := fs.String("date", "", "day YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]string{"person": *personID, "status": *status}); err != nil {
		return err
	}

	tp, mp := dashboard.NewTrainerPanel(s, c), dashboard.NewMemberPanel(s, c)
	if err := dashboard.RefreshAll(ctx, tp, mp); err != nil {
		return err
	}
	p := dashboard.NewAttendancePanel(s, c, tp, mp)
	if *date != "" {
		if err := p.SelectDate(ctx, *date); err != nil {
			return err
		}
	}

	var person analytics.Person
	found := false
	for _, ps := range p.People(dashboard.PeopleFilter{}) {
		if ps.ID == *personID {
			person, found = ps, true
			break
		}
	}
	if !found {
		return fmt.Errorf("person %s not found", *personID)
	}
	rec, err := p.Mark(ctx, person, *status, *notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(con.out, "marked %s %s on %s\n", person.Name, rec.Status, rec.Date)
	return nil
}
