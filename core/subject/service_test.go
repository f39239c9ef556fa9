package subject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisFankam/edumali-sub000/core/school"
	"github.com/louisFankam/edumali-sub000/storage/record/inmem"
)

func TestAffectedSubjects(t *testing.T) {
	tests := []struct {
		name string
		old  []string
		new  []string
		want []string
	}{
		{name: "disjoint", old: []string{"a"}, new: []string{"b"}, want: []string{"a", "b"}},
		{name: "overlap deduped", old: []string{"a", "b"}, new: []string{"b", "c"}, want: []string{"a", "b", "c"}},
		{name: "teacher created", old: nil, new: []string{"a"}, want: []string{"a"}},
		{name: "teacher deleted", old: []string{"a"}, new: nil, want: []string{"a"}},
		{name: "empty ids skipped", old: []string{""}, new: []string{"a"}, want: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AffectedSubjects(tt.old, tt.new))
		})
	}
}

func seedSubject(store *inmem.Store, name string, count int) string {
	ids := store.Seed(school.CollSubjects, map[string]interface{}{
		"name":           name,
		"teacher_number": count,
	})
	return ids[0]
}

func seedTeacher(store *inmem.Store, speciality ...string) {
	store.Seed(school.CollTeachers, map[string]interface{}{
		"first_name": "Moussa",
		"last_name":  "Diarra",
		"speciality": speciality,
		"status":     school.TeacherActive,
	})
}

func TestRecountFor(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	maths := seedSubject(store, "Maths", 0)
	fr := seedSubject(store, "Français", 7) // stale counter
	seedTeacher(store, maths)
	seedTeacher(store, maths, fr)

	require.NoError(t, svc.RecountFor(ctx, []string{maths, fr}))

	var subj school.Subject
	require.NoError(t, store.Get(ctx, school.CollSubjects, maths, &subj))
	assert.Equal(t, 2, subj.TeacherNumber)
	require.NoError(t, store.Get(ctx, school.CollSubjects, fr, &subj))
	assert.Equal(t, 1, subj.TeacherNumber)
}

func TestRecountAll(t *testing.T) {
	ctx := context.Background()
	store := inmem.Open()
	svc := NewService(store)

	maths := seedSubject(store, "Maths", 3)
	hist := seedSubject(store, "Histoire", 1)
	seedTeacher(store, maths)

	require.NoError(t, svc.RecountAll(ctx))

	var subj school.Subject
	require.NoError(t, store.Get(ctx, school.CollSubjects, maths, &subj))
	assert.Equal(t, 1, subj.TeacherNumber)
	require.NoError(t, store.Get(ctx, school.CollSubjects, hist, &subj))
	assert.Equal(t, 0, subj.TeacherNumber, "subjects with no teachers left must drop to zero")
}
