package record

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
	"github.com/louisFankam/edumali-sub000/storage/record/recordtest"
)

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := recordtest.New()
	defer srv.Close()
	client := NewClient(srv.URL(), srv.Token)

	var created school.Class
	err := client.Create(ctx, school.CollClasses, map[string]interface{}{
		"name":             "6ème A",
		"capacity":         40,
		"current_students": 0,
		"total_fee":        50000,
	}, &created)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	var fetched school.Class
	require.NoError(t, client.Get(ctx, school.CollClasses, created.ID, &fetched))
	assert.Equal(t, "6ème A", fetched.Name)
	assert.Equal(t, float64(50000), fetched.TotalFee)

	require.NoError(t, client.Update(ctx, school.CollClasses, created.ID, map[string]interface{}{
		"current_students": 12,
	}, nil))
	require.NoError(t, client.Get(ctx, school.CollClasses, created.ID, &fetched))
	assert.Equal(t, 12, fetched.CurrentStudents)

	require.NoError(t, client.Delete(ctx, school.CollClasses, created.ID))
	err = client.Get(ctx, school.CollClasses, created.ID, &fetched)
	assert.Equal(t, core.ErrNotFound, errors.Cause(err))
}

func TestClientListFilters(t *testing.T) {
	ctx := context.Background()
	srv := recordtest.New()
	defer srv.Close()
	client := NewClient(srv.URL(), srv.Token)

	srv.Store.Seed(school.CollStudents,
		map[string]interface{}{"first_name": "Awa", "class_id": "cls1", "status": "active"},
		map[string]interface{}{"first_name": "Issa", "class_id": "cls1", "status": "inactive"},
		map[string]interface{}{"first_name": "Sira", "class_id": "cls2", "status": "active"},
	)

	var students []school.Student
	total, err := client.List(ctx, school.CollStudents, core.ListOptions{
		Filter: core.Q(`class_id = %s && status = %s`, "cls1", "active"),
	}, &students)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "Awa", students[0].FirstName)
}

func TestClientListCountOnly(t *testing.T) {
	ctx := context.Background()
	srv := recordtest.New()
	defer srv.Close()
	client := NewClient(srv.URL(), srv.Token)

	srv.Store.Seed(school.CollStudents,
		map[string]interface{}{"first_name": "Awa"},
		map[string]interface{}{"first_name": "Issa"},
	)

	// the counting idiom: one-row page, read totalItems
	var none []school.Student
	total, err := client.List(ctx, school.CollStudents, core.ListOptions{Page: 1, PerPage: 1}, &none)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, none, 1)
}

func TestClientNoToken(t *testing.T) {
	srv := recordtest.New()
	defer srv.Close()
	client := NewClient(srv.URL(), "")

	_, err := client.List(context.Background(), school.CollStudents, core.ListOptions{}, nil)
	assert.Equal(t, core.ErrNoToken, errors.Cause(err), "must fail before issuing any request")
}

func TestClientBadToken(t *testing.T) {
	srv := recordtest.New()
	defer srv.Close()
	client := NewClient(srv.URL(), "wrong")

	_, err := client.List(context.Background(), school.CollStudents, core.ListOptions{}, nil)
	assert.Equal(t, core.ErrAuthentication, errors.Cause(err))
}

func TestClientPasswordAuth(t *testing.T) {
	ctx := context.Background()
	srv := recordtest.New()
	defer srv.Close()

	client := NewClientWithPassword(srv.URL(), srv.Identity, srv.Password)
	srv.Store.Seed(school.CollStudents, map[string]interface{}{"first_name": "Awa"})

	total, err := client.List(ctx, school.CollStudents, core.ListOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	bad := NewClientWithPassword(srv.URL(), srv.Identity, "nope")
	_, err = bad.List(ctx, school.CollStudents, core.ListOptions{}, nil)
	assert.Equal(t, core.ErrAuthentication, errors.Cause(err))
}
