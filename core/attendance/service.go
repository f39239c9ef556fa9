package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

var errBadEntry = errors.New("attendance entry needs exactly one of student_id or teacher_id")

type (
	// Entry is one person's attendance for a day. Exactly one of StudentID or
	// TeacherID must be set.
	Entry struct {
		StudentID string `json:"student_id"`
		TeacherID string `json:"teacher_id"`
		Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	}

	Service struct {
		store core.Client
		nowFn func() time.Time
	}
)

func NewService(store core.Client) *Service {
	return &Service{store: store, nowFn: time.Now}
}

// SaveForDate replaces the attendance rows of the given day for every person
// in entries: existing rows matching (canonical date, person) are deleted,
// then one fresh row per entry is inserted. The steps run sequentially with
// no rollback; a failure partway leaves earlier persons already replaced.
// Re-running with the same entries converges to the same final rows.
func (svc *Service) SaveForDate(ctx context.Context, date time.Time, entries []Entry) error {
	for _, e := range entries {
		if (e.StudentID == "") == (e.TeacherID == "") {
			return core.NewValidationError(errBadEntry)
		}
		if err := core.Validate.Struct(e); err != nil {
			return err
		}
	}

	day := school.CanonicalDate(date)
	for _, e := range entries {
		field, id := "student_id", e.StudentID
		if e.TeacherID != "" {
			field, id = "teacher_id", e.TeacherID
		}

		var existing []school.AttendanceRecord
		_, err := svc.store.List(ctx, school.CollAttendance, core.ListOptions{
			Filter:  core.Q(`date = %s && `+field+` = %s`, day, id),
			PerPage: 50,
		}, &existing)
		if err != nil {
			return errors.Wrap(err, "listing attendance for "+id)
		}
		for _, rec := range existing {
			if err := svc.store.Delete(ctx, school.CollAttendance, rec.ID); err != nil {
				return errors.Wrap(err, "deleting attendance "+rec.ID)
			}
		}

		body := map[string]interface{}{
			field:    id,
			"date":   day,
			"status": e.Status,
		}
		if err := svc.store.Create(ctx, school.CollAttendance, body, nil); err != nil {
			return errors.Wrap(err, "creating attendance for "+id)
		}
	}
	return nil
}

// FetchRecords loads attendance for aggregation. Past the configured row
// threshold it falls back to a recent window (last N days) and reports that
// via the second return value; windowed aggregates are approximations over
// recent data only.
func (svc *Service) FetchRecords(ctx context.Context) ([]school.AttendanceRecord, bool, error) {
	threshold := core.Conf.GetInt("attendanceWindowThreshold")
	opts := core.ListOptions{
		Sort:    "-date",
		Expand:  "student_id.class_id",
		PerPage: threshold,
	}

	var records []school.AttendanceRecord
	total, err := svc.store.List(ctx, school.CollAttendance, opts, &records)
	if err != nil {
		return nil, false, err
	}
	if total <= threshold {
		return records, false, nil
	}

	since := svc.nowFn().AddDate(0, 0, -core.Conf.GetInt("attendanceWindowDays"))
	opts.Filter = core.Q(`date >= %s`, school.CanonicalDate(since))
	records = nil
	if _, err := svc.store.List(ctx, school.CollAttendance, opts, &records); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// Stats fetches and aggregates in one call.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	records, windowed, err := svc.FetchRecords(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := ComputeStats(records, svc.nowFn())
	stats.Windowed = windowed
	return stats, nil
}
