package subject

import (
	"context"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

type Service struct {
	store core.Client
}

func NewService(store core.Client) *Service {
	return &Service{store: store}
}

// AffectedSubjects is the union of a teacher's speciality sets before and
// after a mutation: every subject whose teacher count may have changed.
// Order is preserved (old set first), duplicates removed.
func AffectedSubjects(oldSpeciality, newSpeciality []string) []string {
	seen := make(map[string]struct{}, len(oldSpeciality)+len(newSpeciality))
	var ids []string
	for _, id := range append(append([]string{}, oldSpeciality...), newSpeciality...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RecountFor recomputes teacher_number for each subject with a fresh count
// query and writes the result. A full recount per subject, not an incremental
// delta: missed events cannot accumulate drift. Safe to re-run.
func (svc *Service) RecountFor(ctx context.Context, subjectIDs []string) error {
	for _, id := range subjectIDs {
		var none []school.Teacher
		count, err := svc.store.List(ctx, school.CollTeachers, core.ListOptions{
			Filter:  core.Q(`speciality ~ %s`, id),
			Page:    1,
			PerPage: 1,
		}, &none)
		if err != nil {
			return errors.Wrap(err, "counting teachers of subject "+id)
		}
		patch := map[string]interface{}{"teacher_number": count}
		if err := svc.store.Update(ctx, school.CollSubjects, id, patch, nil); err != nil {
			return errors.Wrap(err, "updating subject "+id)
		}
	}
	return nil
}

// RecountAll refreshes every subject's counter; the bulk repair path.
func (svc *Service) RecountAll(ctx context.Context) error {
	var subjects []school.Subject
	if _, err := svc.store.List(ctx, school.CollSubjects, core.ListOptions{PerPage: 500}, &subjects); err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	ids := make([]string, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return svc.RecountFor(ctx, ids)
}
