package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/payroll"
	"github.com/louisFankam/edumali-sub000/core/roster"
	"github.com/louisFankam/edumali-sub000/core/school"
	"github.com/louisFankam/edumali-sub000/core/subject"
	"github.com/louisFankam/edumali-sub000/core/year"
	"github.com/louisFankam/edumali-sub000/storage/record"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	store      *record.Client
	yearSvc    *year.Service
	rosterSvc  *roster.Service
	subjectSvc *subject.Service
	payrollSvc *payroll.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  sync-counters                - recompute every class's student counter and every subject's teacher counter")
	fmt.Println("  activate-year -name NAME     - make the named academic year the single active one")
	fmt.Println("  rollover                     - run the monthly salary export and accumulator reset if due")
	fmt.Println("  login -identity IDENTITY     - obtain a store token; the password will be prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	activateYearCmd := flag.NewFlagSet("activate-year", flag.ExitOnError)
	activateYearName := activateYearCmd.String("name", "", "The academic year's name, e.g. 2025-2026.")

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginIdentity := loginCmd.String("identity", "", "The admin identity. The password will be prompted next.")

	ctx := context.Background()

	switch args[1] {
	case "sync-counters":
		return cli.syncCounters(ctx)
	case "activate-year":
		if err := activateYearCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *activateYearName == "" {
			activateYearCmd.Usage()
			return errHelp
		}
		return cli.activateYear(ctx, *activateYearName)
	case "rollover":
		return cli.rollover(ctx)
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginIdentity == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginIdentity, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) syncCounters(ctx context.Context) error {
	res, err := cli.rosterSvc.SyncCounters(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("classes: %d checked, %d repaired\n", res.Checked, res.Repaired)
	return cli.subjectSvc.RecountAll(ctx)
}

func (cli *commandLine) activateYear(ctx context.Context, name string) error {
	var years []school.AcademicYear
	_, err := cli.store.List(ctx, school.CollAcademicYears, core.ListOptions{
		Filter:  core.Q(`name = %s`, name),
		Page:    1,
		PerPage: 1,
	}, &years)
	if err != nil {
		return err
	}
	if len(years) == 0 {
		return year.ErrNotFound
	}
	if err := cli.yearSvc.Activate(ctx, years[0].ID); err != nil {
		return err
	}
	fmt.Printf("%s is now the active academic year\n", name)
	return nil
}

func (cli *commandLine) rollover(ctx context.Context) error {
	ran, err := cli.payrollSvc.MaybeRollover(ctx)
	if err != nil {
		return err
	}
	if ran {
		fmt.Println("salary rollover completed")
	} else {
		fmt.Println("salary rollover not due")
	}
	return nil
}

func (cli *commandLine) login(ctx context.Context, identity, password string) error {
	client := record.NewClientWithPassword(core.Conf.GetString("storeURL"), identity, password)
	token, err := client.Token(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("token: %s\n", token)
	return nil
}
