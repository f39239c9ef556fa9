package roster

import (
	"context"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

type (
	// NewStudent is the enrollment payload.
	NewStudent struct {
		FirstName      string `json:"first_name" validate:"required"`
		LastName       string `json:"last_name" validate:"required"`
		ClassID        string `json:"class_id" validate:"required"`
		AcademicYear   string `json:"academic_year" validate:"required"`
		EnrollmentDate string `json:"enrollment_date" validate:"required,datestr"`
	}

	// SyncResult reports a SyncCounters run.
	SyncResult struct {
		Checked  int
		Repaired int
	}

	Service struct {
		store core.Client
	}
)

func NewService(store core.Client) *Service {
	return &Service{store: store}
}

// Enroll creates the student and bumps the class counter. The two writes are
// independent; if the counter write fails the student is still enrolled and
// SyncCounters repairs the drift.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (school.Student, error) {
	if err := core.Validate.Struct(ns); err != nil {
		return school.Student{}, err
	}

	var created school.Student
	if err := svc.store.Create(ctx, school.CollStudents, map[string]interface{}{
		"first_name":      core.CleanString(ns.FirstName),
		"last_name":       core.CleanString(ns.LastName),
		"class_id":        ns.ClassID,
		"academic_year":   ns.AcademicYear,
		"status":          school.StudentActive,
		"enrollment_date": ns.EnrollmentDate,
	}, &created); err != nil {
		return school.Student{}, errors.Wrap(err, "creating student")
	}
	if err := svc.IncrementOnEnroll(ctx, ns.ClassID); err != nil {
		return created, err
	}
	return created, nil
}

// Withdraw marks the student inactive and decrements their class counter.
func (svc *Service) Withdraw(ctx context.Context, studentID string) error {
	return svc.deactivate(ctx, studentID, school.StudentInactive)
}

// Graduate marks the student graduated and decrements their class counter.
func (svc *Service) Graduate(ctx context.Context, studentID string) error {
	return svc.deactivate(ctx, studentID, school.StudentGraduated)
}

func (svc *Service) deactivate(ctx context.Context, studentID, status string) error {
	var student school.Student
	if err := svc.store.Get(ctx, school.CollStudents, studentID, &student); err != nil {
		return err
	}
	patch := map[string]interface{}{"status": status}
	if err := svc.store.Update(ctx, school.CollStudents, studentID, patch, nil); err != nil {
		return errors.Wrap(err, "updating student "+studentID)
	}
	if student.Status != school.StudentActive {
		// counter never included this student
		return nil
	}
	return svc.DecrementOnRemoval(ctx, student.ClassID)
}

// Transfer moves an active student to another class, adjusting both counters.
func (svc *Service) Transfer(ctx context.Context, studentID, newClassID string) error {
	var student school.Student
	if err := svc.store.Get(ctx, school.CollStudents, studentID, &student); err != nil {
		return err
	}
	if student.ClassID == newClassID {
		return nil
	}
	patch := map[string]interface{}{"class_id": newClassID}
	if err := svc.store.Update(ctx, school.CollStudents, studentID, patch, nil); err != nil {
		return errors.Wrap(err, "updating student "+studentID)
	}
	if student.Status != school.StudentActive {
		return nil
	}
	if err := svc.DecrementOnRemoval(ctx, student.ClassID); err != nil {
		return err
	}
	return svc.IncrementOnEnroll(ctx, newClassID)
}

// IncrementOnEnroll bumps the class's denormalized student counter. This is a
// read-then-write, not an atomic increment: two overlapping calls can drop a
// count. SyncCounters is the authoritative repair path.
func (svc *Service) IncrementOnEnroll(ctx context.Context, classID string) error {
	var class school.Class
	if err := svc.store.Get(ctx, school.CollClasses, classID, &class); err != nil {
		return err
	}
	patch := map[string]interface{}{"current_students": class.CurrentStudents + 1}
	return errors.Wrap(svc.store.Update(ctx, school.CollClasses, classID, patch, nil), "incrementing class "+classID)
}

// DecrementOnRemoval lowers the counter, never below zero.
func (svc *Service) DecrementOnRemoval(ctx context.Context, classID string) error {
	var class school.Class
	if err := svc.store.Get(ctx, school.CollClasses, classID, &class); err != nil {
		return err
	}
	next := class.CurrentStudents - 1
	if next < 0 {
		next = 0
	}
	patch := map[string]interface{}{"current_students": next}
	return errors.Wrap(svc.store.Update(ctx, school.CollClasses, classID, patch, nil), "decrementing class "+classID)
}

// SyncCounters recomputes every class's counter from a direct count of its
// active students and overwrites any class whose stored value disagrees. It
// is idempotent: a second run with no intervening enrollment changes writes
// nothing. Run it periodically or after bulk operations.
func (svc *Service) SyncCounters(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	var classes []school.Class
	if _, err := svc.store.List(ctx, school.CollClasses, core.ListOptions{PerPage: 500}, &classes); err != nil {
		return res, errors.Wrap(err, "listing classes")
	}

	for _, class := range classes {
		var none []school.Student
		count, err := svc.store.List(ctx, school.CollStudents, core.ListOptions{
			Filter:  core.Q(`class_id = %s && status = %s`, class.ID, school.StudentActive),
			Page:    1,
			PerPage: 1,
		}, &none)
		if err != nil {
			return res, errors.Wrap(err, "counting students of "+class.ID)
		}
		res.Checked++
		if count == class.CurrentStudents {
			continue
		}
		patch := map[string]interface{}{"current_students": count}
		if err := svc.store.Update(ctx, school.CollClasses, class.ID, patch, nil); err != nil {
			return res, errors.Wrap(err, "repairing class "+class.ID)
		}
		res.Repaired++
	}
	return res, nil
}
