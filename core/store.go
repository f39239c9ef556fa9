package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrNoToken means no bearer token (or credentials) were configured; surfaced
	// immediately, never retried.
	ErrNoToken = errors.New("record store: no auth token")
	// ErrAuthentication means the store rejected our token.
	ErrAuthentication = errors.New("record store: authentication failed")
	ErrNotFound       = errors.New("record store: record not found")
)

type (
	// ListOptions narrows a Client.List call. Filter is a store filter expression
	// (see Q); Expand inlines referenced records into each item's "expand" object.
	ListOptions struct {
		Filter  string
		Sort    string
		Expand  string
		Page    int
		PerPage int
	}

	// Client is the generic collection/record store every reconciler and fetcher
	// runs against. There are no transactions: multi-write procedures must
	// tolerate partial completion and be safe to re-run.
	Client interface {
		// List decodes the matching records into dst (a pointer to a slice) and
		// returns the total number of matching records across all pages.
		List(ctx context.Context, collection string, opts ListOptions, dst interface{}) (totalItems int, err error)
		Get(ctx context.Context, collection, id string, dst interface{}) error
		Create(ctx context.Context, collection string, body interface{}, dst interface{}) error
		Update(ctx context.Context, collection, id string, patch interface{}, dst interface{}) error
		Delete(ctx context.Context, collection, id string) error
	}
)

// Q builds a store filter expression, quoting string and time arguments so
// callers cannot forget to. Times are encoded with the store's datetime layout.
//
//	Q(`class_id = %s && status = %s`, classID, "active")
func Q(format string, args ...interface{}) string {
	quoted := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			quoted[i] = strconv.Quote(v)
		case time.Time:
			quoted[i] = strconv.Quote(v.UTC().Format("2006-01-02 15:04:05.000Z"))
		default:
			quoted[i] = v
		}
	}
	return fmt.Sprintf(format, quoted...)
}
