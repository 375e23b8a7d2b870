// Command gymctl is a terminal dashboard for gym administrators. It signs in
// with a Firebase ID token, passes the access gate and prints one panel or
// applies one change.
//
//	gymctl [-api URL] [-token ID_TOKEN] <command> [flags]
//
// Read commands: whoami, trainers, members, attendance, stats, at-risk, devices, exercises.
// Write commands: trainer-add, trainer-rm, member-add, member-rm, assign, mark.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/dashboard"
	"gym-manager/backend/internal/scope"
)

func main() {
	log.SetFlags(0)
	api := flag.String("api", config.APIURL(), "backend base url")
	token := flag.String("token", os.Getenv("GYM_ID_TOKEN"), "Firebase ID token (default $GYM_ID_TOKEN)")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	c, err := dashboard.NewClient(*api)
	if err != nil {
		log.Fatal(err)
	}
	if *token != "" {
		if _, err := c.Login(ctx, *token); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	s, err := dashboard.Init(ctx, c)
	if err != nil {
		var denied *dashboard.DeniedError
		switch {
		case errors.Is(err, dashboard.ErrSignInRequired):
			log.Fatal("not signed in: pass -token or set GYM_ID_TOKEN")
		case errors.As(err, &denied):
			log.Fatalf("access denied: %s", denied.Reason)
		}
		log.Fatal(err)
	}
	defer s.Teardown(context.Background())

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, c, s, cmd, args); err != nil {
		s.Teardown(context.Background())
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: gymctl [-api URL] [-token ID_TOKEN] <command> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "read:  whoami, trainers, members, attendance, stats, at-risk, devices, exercises\n")
	fmt.Fprintf(os.Stderr, "write: trainer-add, trainer-rm, member-add, member-rm, assign, mark\n\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, c *dashboard.Client, s *dashboard.Session, cmd string, args []string) error {
	if w, ok := writeCommands[cmd]; ok {
		return w(ctx, c, s, args, newConsole(os.Stdin, os.Stdout))
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	search := fs.String("search", "", "name/email filter")
	gymID := fs.String("gym", "all", "gym id or all")
	status := fs.String("status", "all", "status filter")
	kind := fs.String("type", "all", "membership type (members) or person type (attendance)")
	date := fs.String("date", "", "day YYYY-MM-DD (default today)")
	muscle := fs.String("muscle", "", "muscle group id or name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch cmd {
	case "whoami":
		id := s.Identity()
		fmt.Fprintf(tw, "uid\t%s\n", id.UID)
		fmt.Fprintf(tw, "email\t%s\n", id.Email)
		fmt.Fprintf(tw, "organization\t%s (%s)\n", s.Organization().Name, s.OrganizationID())
		for _, g := range s.UserGyms() {
			fmt.Fprintf(tw, "gym\t%s\t%s\n", g.ID, g.Name)
		}
		return nil

	case "trainers":
		p := dashboard.NewTrainerPanel(s, c)
		if err := p.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSPECIALIZATION\tGYM\tSTATUS")
		for _, t := range p.List(dashboard.TrainerFilter{Search: *search, GymID: *gymID, Status: *status}) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Email, t.Specialization, t.GymName, t.Status)
		}
		printFailures(p.Failures())
		return nil

	case "members":
		tp, mp := dashboard.NewTrainerPanel(s, c), dashboard.NewMemberPanel(s, c)
		if err := dashboard.RefreshAll(ctx, tp, mp); err != nil {
			return err
		}
		names := map[string]string{}
		for _, t := range tp.All() {
			names[t.ID] = t.Name
		}
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tMEMBERSHIP\tGYM\tTRAINER\tSTATUS")
		f := dashboard.MemberFilter{Search: *search, GymID: *gymID, Status: *status, MembershipType: *kind}
		for _, m := range mp.List(f) {
			trainer := names[m.AssignedTrainer]
			if trainer == "" {
				trainer = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.MembershipType, m.GymName, trainer, m.Status)
		}
		printFailures(mp.Failures())
		return nil

	case "attendance":
		tp, mp := dashboard.NewTrainerPanel(s, c), dashboard.NewMemberPanel(s, c)
		if err := dashboard.RefreshAll(ctx, tp, mp); err != nil {
			return err
		}
		p := dashboard.NewAttendancePanel(s, c, tp, mp)
		if *date != "" {
			if err := p.SelectDate(ctx, *date); err != nil {
				return err
			}
		} else if err := p.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintf(tw, "date\t%s\n\n", p.Date())
		fmt.Fprintln(tw, "NAME\tTYPE\tGYM\tSTATUS")
		for _, person := range p.People(dashboard.PeopleFilter{GymID: *gymID, Type: *kind}) {
			st := "-"
			if r, ok := p.PersonAttendance(person.ID); ok {
				st = r.Status
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", person.Name, person.Type, person.GymName, st)
		}
		sum := p.Analytics()
		fmt.Fprintf(tw, "\ntotal %d\tpresent %d\tlate %d\tabsent %d\trate %d%%\n", sum.Total, sum.Present, sum.Late, sum.Absent, sum.Rate)
		return nil

	case "stats":
		day := *date
		if day == "" {
			day = time.Now().Format("2006-01-02")
		}
		rep, err := c.AttendanceStats(ctx, s.OrganizationID(), s.GymIDs(), day)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "date\t%s\n", rep.Date)
		fmt.Fprintf(tw, "present\t%d/%d (%d%%)\n", rep.Summary.Present, rep.Summary.Total, rep.Summary.Rate)
		fmt.Fprintf(tw, "late\t%d\n", rep.Summary.Late)
		fmt.Fprintf(tw, "absent\t%d\n\n", rep.Summary.Absent)
		fmt.Fprintln(tw, "GYM\tPEOPLE\tPRESENT\tRATE")
		for _, g := range rep.Gyms {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\n", g.GymName, g.People, g.Present, g.Rate)
		}
		fmt.Fprintln(tw)
		for _, d := range rep.Weekly {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Day, d.Date, strings.Repeat("#", d.Present))
		}
		printFailures(rep.FailedGyms)
		return nil

	case "at-risk":
		rep, err := c.RetentionAlerts(ctx, s.OrganizationID(), s.GymIDs(), *date)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "RISK\tNAME\tGYM\tLAST VISIT\tDAYS")
		for _, a := range rep.Alerts {
			last, days := a.LastAttendedDate, fmt.Sprint(a.DaysSinceLastAttendance)
			if a.DaysSinceLastAttendance < 0 {
				last, days = "-", "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.RiskLevel, a.Name, a.GymName, last, days)
		}
		fmt.Fprintf(tw, "\n%d of %d members at risk\n", rep.Stats.TotalAtRisk, rep.Stats.TotalMembers)
		printFailures(rep.FailedGyms)
		return nil

	case "devices":
		p := dashboard.NewDevicePanel(s, c)
		if err := p.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tMODEL\tSERIAL\tGYM\tSTATUS")
		for _, d := range p.List(*gymID) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.ModelNo, d.Serial, d.GymName, d.NormalizedStatus())
		}
		n := p.Counts(*gymID)
		fmt.Fprintf(tw, "\nactive %d\tinventory %d\tmaintenance %d\tretired %d\n", n.Active, n.Inventory, n.Maintenance, n.Retired)
		return nil

	case "exercises":
		lib, err := c.Exercises(ctx, *search, *muscle)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tMUSCLE")
		for _, e := range lib.Exercises {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Name, e.Muscle)
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func printFailures(failed []scope.Failure) {
	for _, f := range failed {
		log.Printf("warning: gym %s could not be loaded: %s", f.GymID, f.Error)
	}
}
