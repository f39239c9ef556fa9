package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
	"github.com/louisFankam/edumali-sub000/storage/record/inmem"
)

func TestSaveForDateReplaces(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	err := svc.SaveForDate(ctx, day, []Entry{
		{StudentID: "stu1", Status: "present"},
		{StudentID: "stu2", Status: "absent"},
	})
	require.NoError(t, err)

	// saving again for the same date leaves exactly the new rows
	err = svc.SaveForDate(ctx, day, []Entry{
		{StudentID: "stu1", Status: "late"},
		{StudentID: "stu2", Status: "present"},
	})
	require.NoError(t, err)

	var records []school.AttendanceRecord
	total, err := store.List(ctx, school.CollAttendance, core.ListOptions{PerPage: 50}, &records)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	byStudent := make(map[string]school.AttendanceRecord)
	for _, rec := range records {
		assert.Equal(t, school.CanonicalDate(day), rec.Date)
		byStudent[rec.StudentID.String] = rec
	}
	assert.Equal(t, "late", byStudent["stu1"].Status)
	assert.Equal(t, "present", byStudent["stu2"].Status)
}

func TestSaveForDateScopedToDay(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	day1 := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	require.NoError(t, svc.SaveForDate(ctx, day1, []Entry{{StudentID: "stu1", Status: "present"}}))
	require.NoError(t, svc.SaveForDate(ctx, day2, []Entry{{StudentID: "stu1", Status: "absent"}}))

	total, err := store.List(ctx, school.CollAttendance, core.ListOptions{PerPage: 50}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "other days' rows must survive")
}

func TestSaveForDateValidation(t *testing.T) {
	svc := NewService(inmem.Open())
	day := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	err := svc.SaveForDate(context.Background(), day, []Entry{{Status: "present"}})
	assert.Error(t, err, "entry without a person must be rejected")

	err = svc.SaveForDate(context.Background(), day, []Entry{{StudentID: "stu1", Status: "sick"}})
	assert.Error(t, err, "unknown status must be rejected")
}

func TestFetchRecordsWindowed(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)
	svc.nowFn = func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }

	old := core.Conf.GetInt("attendanceWindowThreshold")
	core.Conf.Set("attendanceWindowThreshold", 3)
	defer core.Conf.Set("attendanceWindowThreshold", old)

	// 2 recent rows + 2 beyond the 30-day window
	for _, daysAgo := range []int{1, 2, 40, 50} {
		store.Seed(school.CollAttendance, map[string]interface{}{
			"student_id": "stu1",
			"date":       school.CanonicalDate(svc.nowFn().AddDate(0, 0, -daysAgo)),
			"status":     "present",
		})
	}

	records, windowed, err := svc.FetchRecords(ctx)
	require.NoError(t, err)
	assert.True(t, windowed, "threshold crossed, fetch must fall back to the window")
	assert.Len(t, records, 2)
}

func TestFetchRecordsFull(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	store.Seed(school.CollAttendance, map[string]interface{}{
		"student_id": "stu1",
		"date":       "2026-03-16 00:00:00.000Z",
		"status":     "present",
	})

	records, windowed, err := svc.FetchRecords(ctx)
	require.NoError(t, err)
	assert.False(t, windowed)
	assert.Len(t, records, 1)
}
