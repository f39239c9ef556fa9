// Package inmem provides an in-memory core.Client used by tests. It
// implements the small filter grammar the services emit (equality, >= / <=
// comparisons, `~` contains, `&&` and `||`). Dotted field paths resolve
// through relations registered with Relate; relation expansion is not
// resolved.
package inmem

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
)

const defaultPerPage = 30

var clauseRegex = regexp.MustCompile(`^\s*([\w.]+)\s*(>=|<=|!=|=|~)\s*(.+?)\s*$`)

type Store struct {
	mu          sync.RWMutex
	collections map[string][]map[string]interface{}
	relations   map[string]string
	writes      int
}

var _ core.Client = (*Store)(nil)

func Open() *Store {
	return &Store{
		collections: make(map[string][]map[string]interface{}),
		relations:   make(map[string]string),
	}
}

// Relate registers a relation field so dotted filter paths resolve: after
// Relate("exam_id", "exams"), a clause on "exam_id.academic_year" is
// evaluated against the exams record the field points at.
func (s *Store) Relate(field, collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[field] = collection
}

// Seed inserts records directly, assigning ids where missing. Records go
// through a JSON round trip so values carry the same types a decoded API
// response would (all numbers become float64).
func (s *Store) Seed(collection string, records ...map[string]interface{}) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		cp, err := toRecord(rec)
		if err != nil {
			panic(err)
		}
		if _, ok := cp["id"]; !ok {
			cp["id"] = uuid.New().String()
		}
		s.collections[collection] = append(s.collections[collection], cp)
		ids = append(ids, fmt.Sprint(cp["id"]))
	}
	return ids
}

// WriteCount tallies create/update/delete calls; handy for idempotence tests.
func (s *Store) WriteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) List(_ context.Context, collection string, opts core.ListOptions, dst interface{}) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]map[string]interface{}, 0)
	for _, rec := range s.collections[collection] {
		ok, err := s.matchFilter(rec, opts.Filter)
		if err != nil {
			return 0, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	total := len(matched)

	if opts.Sort != "" {
		sortRecords(matched, opts.Sort)
	}

	page, perPage := opts.Page, opts.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	matched = matched[start:end]

	if dst != nil {
		if err := decodeInto(matched, dst); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (s *Store) Get(_ context.Context, collection, id string, dst interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.find(collection, id)
	if rec == nil {
		return core.ErrNotFound
	}
	if dst == nil {
		return nil
	}
	return decodeInto(rec, dst)
}

func (s *Store) Create(_ context.Context, collection string, body interface{}, dst interface{}) error {
	rec, err := toRecord(body)
	if err != nil {
		return err
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = uuid.New().String()
	}

	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], rec)
	s.writes++
	s.mu.Unlock()

	if dst == nil {
		return nil
	}
	return decodeInto(rec, dst)
}

func (s *Store) Update(_ context.Context, collection, id string, patch interface{}, dst interface{}) error {
	fields, err := toRecord(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	rec := s.find(collection, id)
	if rec == nil {
		s.mu.Unlock()
		return core.ErrNotFound
	}
	for k, v := range fields {
		rec[k] = v
	}
	s.writes++
	s.mu.Unlock()

	if dst == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeInto(rec, dst)
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.collections[collection]
	for i, rec := range recs {
		if fmt.Sprint(rec["id"]) == id {
			s.collections[collection] = append(recs[:i], recs[i+1:]...)
			s.writes++
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) find(collection, id string) map[string]interface{} {
	for _, rec := range s.collections[collection] {
		if fmt.Sprint(rec["id"]) == id {
			return rec
		}
	}
	return nil
}

// ---- filter evaluation ----

// matchFilter evaluates `a && b || c && d` as an OR of AND groups.
func (s *Store) matchFilter(rec map[string]interface{}, filter string) (bool, error) {
	if strings.TrimSpace(filter) == "" {
		return true, nil
	}
	for _, group := range strings.Split(filter, "||") {
		all := true
		for _, clause := range strings.Split(group, "&&") {
			ok, err := s.matchClause(rec, clause)
			if err != nil {
				return false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) matchClause(rec map[string]interface{}, clause string) (bool, error) {
	m := clauseRegex.FindStringSubmatch(clause)
	if m == nil {
		return false, errors.Errorf("inmem: unsupported filter clause %q", clause)
	}
	field, op, lit := m[1], m[2], m[3]
	if i := strings.IndexByte(field, '.'); i >= 0 {
		coll, ok := s.relations[field[:i]]
		if !ok {
			return false, errors.Errorf("inmem: no relation registered for filter path %q", field)
		}
		rel := s.find(coll, fmt.Sprint(rec[field[:i]]))
		if rel == nil {
			return false, nil
		}
		return s.matchClause(rel, field[i+1:]+" "+op+" "+m[3])
	}
	if strings.HasPrefix(lit, `"`) {
		unquoted, err := strconv.Unquote(lit)
		if err != nil {
			return false, errors.Wrapf(err, "inmem: bad literal %s", lit)
		}
		lit = unquoted
	}
	val, present := rec[field]

	switch op {
	case "=":
		return present && equal(val, lit), nil
	case "!=":
		return !present || !equal(val, lit), nil
	case ">=":
		return present && compare(val, lit) >= 0, nil
	case "<=":
		return present && compare(val, lit) <= 0, nil
	case "~":
		return present && contains(val, lit), nil
	}
	return false, errors.Errorf("inmem: unsupported operator %q", op)
}

func equal(val interface{}, lit string) bool {
	if f, ok := val.(float64); ok {
		if lf, err := strconv.ParseFloat(lit, 64); err == nil {
			return f == lf
		}
	}
	return fmt.Sprint(val) == lit
}

// compare works for the canonical datetime strings (lexicographic order
// matches chronological) and for numbers.
func compare(val interface{}, lit string) int {
	if f, ok := val.(float64); ok {
		if lf, err := strconv.ParseFloat(lit, 64); err == nil {
			switch {
			case f < lf:
				return -1
			case f > lf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(val), lit)
}

// contains mirrors the store's `~` operator: on multi-value fields it means
// "any value equals", on strings it means substring.
func contains(val interface{}, lit string) bool {
	if items, ok := val.([]interface{}); ok {
		for _, item := range items {
			if fmt.Sprint(item) == lit {
				return true
			}
		}
		return false
	}
	return strings.Contains(fmt.Sprint(val), lit)
}

func sortRecords(recs []map[string]interface{}, key string) {
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(strings.TrimPrefix(key, "-"), "+")
	sort.SliceStable(recs, func(i, j int) bool {
		less := compare(recs[i][key], fmt.Sprint(recs[j][key])) < 0
		if desc {
			return !less && !sameField(recs[i][key], recs[j][key])
		}
		return less
	})
}

func sameField(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// ---- record (de)serialization via JSON round-trips ----

func toRecord(body interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "inmem: encoding body")
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, "inmem: body must be an object")
	}
	return rec, nil
}

func decodeInto(src, dst interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, "inmem: encoding records")
	}
	return errors.Wrap(json.Unmarshal(raw, dst), "inmem: decoding records")
}
