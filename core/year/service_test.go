package year

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

func activeCount(t *testing.T, store *inmem.Store) int {
	t.Helper()
	total, err := store.List(context.Background(), school.CollAcademicYears, core.ListOptions{
		Filter: core.Q(`status = %s`, school.YearActive),
	}, nil)
	require.NoError(t, err)
	return total
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	ids := store.Seed(school.CollAcademicYears,
		map[string]interface{}{"name": "2024-2025", "status": school.YearActive},
		map[string]interface{}{"name": "2025-2026", "status": school.YearUpcoming},
	)

	require.NoError(t, svc.Activate(ctx, ids[1]))

	var old, current school.AcademicYear
	require.NoError(t, store.Get(ctx, school.CollAcademicYears, ids[0], &old))
	require.NoError(t, store.Get(ctx, school.CollAcademicYears, ids[1], &current))
	assert.Equal(t, school.YearArchived, old.Status)
	assert.Equal(t, school.YearActive, current.Status)
	assert.Equal(t, 1, activeCount(t, store))
}

func TestActivateAlreadyActive(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	ids := store.Seed(school.CollAcademicYears,
		map[string]interface{}{"name": "2025-2026", "status": school.YearActive},
	)
	writes := store.WriteCount()

	require.NoError(t, svc.Activate(ctx, ids[0]))
	assert.Equal(t, writes, store.WriteCount(), "re-activating the active year must write nothing")
	assert.Equal(t, 1, activeCount(t, store))
}

func TestActivateSequenceKeepsSingleActive(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	ids := store.Seed(school.CollAcademicYears,
		map[string]interface{}{"name": "2023-2024", "status": school.YearActive},
		map[string]interface{}{"name": "2024-2025", "status": school.YearUpcoming},
		map[string]interface{}{"name": "2025-2026", "status": school.YearUpcoming},
	)

	for _, id := range []string{ids[1], ids[2], ids[0]} {
		require.NoError(t, svc.Activate(ctx, id))
		assert.Equal(t, 1, activeCount(t, store))
	}

	// no way back from archived except another activate()
	var first school.AcademicYear
	require.NoError(t, store.Get(ctx, school.CollAcademicYears, ids[0], &first))
	assert.Equal(t, school.YearActive, first.Status)
}

func TestActivateUnknownYear(t *testing.T) {
	svc := NewService(inmem.Open())
	err := svc.Activate(context.Background(), "missing")
	assert.Equal(t, ErrNotFound, err)
}

func TestEnsureActiveCreatesDefault(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)
	svc.nowFn = func() time.Time { return time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC) }

	created, err := svc.EnsureActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", created.Name)
	assert.Equal(t, school.YearActive, created.Status)
	assert.Equal(t, "2025-09-01", created.StartDate)
	assert.Equal(t, "2026-06-30", created.EndDate)
	assert.Equal(t, 1, activeCount(t, store))

	// second call returns the same year instead of creating another
	again, err := svc.EnsureActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, activeCount(t, store))
}

func TestEnsureActiveSpringSpan(t *testing.T) {
	store := inmem.Open()
	svc := NewService(store)
	svc.nowFn = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }

	created, err := svc.EnsureActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", created.Name, "spring dates belong to the span started the previous September")
}

func TestCreateStartsUpcoming(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	store.Seed(school.CollAcademicYears,
		map[string]interface{}{"name": "2024-2025", "status": school.YearActive},
	)

	created, err := svc.Create(ctx, NewAcademicYear{
		Name:      "2025-2026",
		StartDate: "2025-09-01",
		EndDate:   "2026-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, school.YearUpcoming, created.Status)
	assert.Equal(t, 1, activeCount(t, store))

	_, err = svc.Create(ctx, NewAcademicYear{Name: "2026-2027", StartDate: "bad date"})
	assert.Error(t, err)
}
