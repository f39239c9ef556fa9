package year

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

var (
	ErrNotFound = errors.New("academic year not found")
	// ErrNoActive means no academic year is currently active; callers that can
	// should recover with EnsureActive.
	ErrNoActive = errors.New("no active academic year")
)

type (
	// NewAcademicYear is the creation payload. A new year starts as upcoming
	// unless Activate is set.
	NewAcademicYear struct {
		Name      string `json:"name" validate:"required"`
		StartDate string `json:"start_date" validate:"required,datestr"`
		EndDate   string `json:"end_date" validate:"required,datestr"`
		Activate  bool   `json:"-"`
	}

	Service struct {
		store core.Client
		nowFn func() time.Time
	}
)

func NewService(store core.Client) *Service {
	return &Service{store: store, nowFn: time.Now}
}

// Active returns the currently active academic year, or ErrNoActive.
func (svc *Service) Active(ctx context.Context) (school.AcademicYear, error) {
	years, err := svc.listActive(ctx)
	if err != nil {
		return school.AcademicYear{}, err
	}
	if len(years) == 0 {
		return school.AcademicYear{}, ErrNoActive
	}
	return years[0], nil
}

// EnsureActive returns the active year, creating a default current-span year
// when none exists yet instead of failing.
func (svc *Service) EnsureActive(ctx context.Context) (school.AcademicYear, error) {
	active, err := svc.Active(ctx)
	if err == nil {
		return active, nil
	}
	if errors.Cause(err) != ErrNoActive {
		return school.AcademicYear{}, err
	}

	ny := defaultYear(svc.nowFn())
	var created school.AcademicYear
	if err := svc.store.Create(ctx, school.CollAcademicYears, map[string]interface{}{
		"name":       ny.Name,
		"status":     school.YearActive,
		"start_date": ny.StartDate,
		"end_date":   ny.EndDate,
		"periods":    "[]",
		"holidays":   "[]",
	}, &created); err != nil {
		return school.AcademicYear{}, errors.Wrap(err, "creating default academic year")
	}
	return created, nil
}

// Activate makes the given year the single active one: every other active
// year is archived first, then the target is activated. The writes are
// independent and non-atomic; a failure between them can leave zero active
// years, which a re-invocation repairs. Activating the already-active year is
// a no-op. There is no other transition out of archived.
func (svc *Service) Activate(ctx context.Context, id string) error {
	var target school.AcademicYear
	if err := svc.store.Get(ctx, school.CollAcademicYears, id, &target); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return ErrNotFound
		}
		return err
	}

	active, err := svc.listActive(ctx)
	if err != nil {
		return err
	}
	alreadyActive := false
	for _, y := range active {
		if y.ID == id {
			alreadyActive = true
			continue
		}
		patch := map[string]interface{}{"status": school.YearArchived}
		if err := svc.store.Update(ctx, school.CollAcademicYears, y.ID, patch, nil); err != nil {
			return errors.Wrap(err, "archiving year "+y.ID)
		}
	}
	if alreadyActive {
		return nil
	}

	patch := map[string]interface{}{"status": school.YearActive}
	if err := svc.store.Update(ctx, school.CollAcademicYears, id, patch, nil); err != nil {
		return errors.Wrap(err, "activating year "+id)
	}
	return nil
}

// Create adds a new academic year; it starts upcoming unless ny.Activate is
// set, in which case the single-active invariant is maintained by archiving
// the current active year first.
func (svc *Service) Create(ctx context.Context, ny NewAcademicYear) (school.AcademicYear, error) {
	if err := core.Validate.Struct(ny); err != nil {
		return school.AcademicYear{}, err
	}

	var created school.AcademicYear
	if err := svc.store.Create(ctx, school.CollAcademicYears, map[string]interface{}{
		"name":       core.CleanString(ny.Name),
		"status":     school.YearUpcoming,
		"start_date": ny.StartDate,
		"end_date":   ny.EndDate,
		"periods":    "[]",
		"holidays":   "[]",
	}, &created); err != nil {
		return school.AcademicYear{}, errors.Wrap(err, "creating academic year")
	}
	if ny.Activate {
		if err := svc.Activate(ctx, created.ID); err != nil {
			return created, err
		}
		created.Status = school.YearActive
	}
	return created, nil
}

func (svc *Service) listActive(ctx context.Context) ([]school.AcademicYear, error) {
	var years []school.AcademicYear
	_, err := svc.store.List(ctx, school.CollAcademicYears, core.ListOptions{
		Filter:  core.Q(`status = %s`, school.YearActive),
		PerPage: 50,
	}, &years)
	if err != nil {
		return nil, errors.Wrap(err, "listing active years")
	}
	return years, nil
}

// defaultYear spans the school year containing now: September 1st to
// June 30th, named after both calendar years.
func defaultYear(now time.Time) NewAcademicYear {
	now = now.UTC()
	startYear := now.Year()
	if now.Month() < time.September {
		startYear--
	}
	return NewAcademicYear{
		Name:      fmt.Sprintf("%d-%d", startYear, startYear+1),
		StartDate: fmt.Sprintf("%d-09-01", startYear),
		EndDate:   fmt.Sprintf("%d-06-30", startYear+1),
	}
}
