package payroll

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

type (
	// SalaryLine is one person's pay for the month being exported.
	SalaryLine struct {
		Name        string
		Contract    string
		HoursWorked float64
		Majoration  float64
		Amount      float64
	}

	Service struct {
		store  core.Client
		email  core.EmailService
		logger core.Logger
		nowFn  func() time.Time
	}
)

func NewService(store core.Client, email core.EmailService, logger core.Logger) *Service {
	return &Service{store: store, email: email, logger: logger, nowFn: time.Now}
}

// RolloverDue gates the rollover: the calendar day must have reached the
// configured threshold (28 by default) and the last export's month must
// differ from the current one (or no export exists yet).
func RolloverDue(now time.Time, last *school.SalaryExport) bool {
	if now.Day() < core.Conf.GetInt("rolloverDay") {
		return false
	}
	return last == nil || last.Month != school.MonthKey(now)
}

// LastExport returns the most recent salary export, or nil when none exists.
func (svc *Service) LastExport(ctx context.Context) (*school.SalaryExport, error) {
	var exports []school.SalaryExport
	_, err := svc.store.List(ctx, school.CollSalaryExports, core.ListOptions{
		Sort:    "-month",
		Page:    1,
		PerPage: 1,
	}, &exports)
	if err != nil {
		return nil, errors.Wrap(err, "listing salary exports")
	}
	if len(exports) == 0 {
		return nil, nil
	}
	return &exports[0], nil
}

// MaybeRollover runs the rollover when it is due; the hook to call from any
// trigger point. Returns whether a rollover ran.
func (svc *Service) MaybeRollover(ctx context.Context) (bool, error) {
	last, err := svc.LastExport(ctx)
	if err != nil {
		return false, err
	}
	if !RolloverDue(svc.nowFn(), last) {
		return false, nil
	}
	return svc.Rollover(ctx)
}

// Rollover renders the month's salary recap, persists the export under its
// canonical YYYY-MM key, then zeroes hours_worked and majoration on every
// active teacher and every busy substitute. Re-triggering within the same
// month is a no-op: the export record is the idempotency marker. The zeroing
// is a batch of independent writes with no same-month retry; accumulators a
// partial failure left standing carry into the next month's export, where
// the zeroing runs again.
func (svc *Service) Rollover(ctx context.Context) (bool, error) {
	now := svc.nowFn()
	key := school.MonthKey(now)

	var existing []school.SalaryExport
	_, err := svc.store.List(ctx, school.CollSalaryExports, core.ListOptions{
		Filter:  core.Q(`month = %s`, key),
		Page:    1,
		PerPage: 1,
	}, &existing)
	if err != nil {
		return false, errors.Wrap(err, "checking export for "+key)
	}
	if len(existing) > 0 {
		return false, nil
	}

	var teachers []school.Teacher
	if _, err := svc.store.List(ctx, school.CollTeachers, core.ListOptions{
		Filter:  core.Q(`status = %s`, school.TeacherActive),
		PerPage: 500,
	}, &teachers); err != nil {
		return false, errors.Wrap(err, "listing active teachers")
	}
	var substitutes []school.Substitute
	if _, err := svc.store.List(ctx, school.CollSubstitutes, core.ListOptions{PerPage: 500}, &substitutes); err != nil {
		return false, errors.Wrap(err, "listing substitutes")
	}

	var lines []SalaryLine
	var total float64
	for _, t := range teachers {
		line := SalaryLine{
			Name:        t.FullName(),
			Contract:    t.Contract,
			HoursWorked: t.HoursWorked,
			Majoration:  t.Majoration,
			Amount:      salaryFor(t.Contract, t.Salary, t.HourlyRate, t.HoursWorked, t.Majoration),
		}
		lines = append(lines, line)
		total += line.Amount
	}
	busy := substitutes[:0]
	for _, s := range substitutes {
		if s.HoursWorked == 0 && s.Majoration == 0 {
			continue
		}
		busy = append(busy, s)
		line := SalaryLine{
			Name:        s.FullName() + " (remplaçant)",
			Contract:    s.Contract,
			HoursWorked: s.HoursWorked,
			Majoration:  s.Majoration,
			Amount:      salaryFor(s.Contract, s.Salary, s.HourlyRate, s.HoursWorked, s.Majoration),
		}
		lines = append(lines, line)
		total += line.Amount
	}

	recap, err := RenderRecap(core.Conf.GetString("schoolName"), key, lines)
	if err != nil {
		return false, errors.Wrap(err, "rendering recap for "+key)
	}

	if err := svc.store.Create(ctx, school.CollSalaryExports, map[string]interface{}{
		"month":         key,
		"generated_at":  now.UTC().Format(school.DateTimeLayout),
		"teacher_count": len(lines),
		"total_amount":  total,
	}, nil); err != nil {
		return false, errors.Wrap(err, "persisting export for "+key)
	}

	zero := map[string]interface{}{"hours_worked": 0, "majoration": 0}
	for _, t := range teachers {
		if err := svc.store.Update(ctx, school.CollTeachers, t.ID, zero, nil); err != nil {
			return true, errors.Wrap(err, "resetting teacher "+t.ID)
		}
	}
	for _, s := range busy {
		if err := svc.store.Update(ctx, school.CollSubstitutes, s.ID, zero, nil); err != nil {
			return true, errors.Wrap(err, "resetting substitute "+s.ID)
		}
	}

	svc.notify(key, len(lines), recap)
	svc.logger.Info("salary rollover completed", map[string]interface{}{"month": key, "lines": len(lines)})
	return true, nil
}

func (svc *Service) notify(key string, count int, recap core.Attachment) {
	to := core.Conf.GetString("payrollEmail")
	if to == "" || svc.email == nil {
		return
	}
	svc.email.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Address: to}},
		Subject:     "Export des salaires " + key,
		TextContent: fmt.Sprintf("L'export des salaires du mois %s (%d lignes) est disponible en pièce jointe.", key, count),
		Attachments: []core.Attachment{recap},
	})
}

// salaryFor applies the contract formula: hourly contracts pay the worked
// hours, monthly contracts pay the base salary; majoration adds on top.
func salaryFor(contract string, salary, hourlyRate, hours, majoration float64) float64 {
	if contract == school.ContractHourly {
		return hours*hourlyRate + majoration
	}
	return salary + majoration
}
