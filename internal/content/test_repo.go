package content

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var _ recordsRepo = (*TestRepo)(nil)

// TestRepo is an in-memory records store with the same semantics as Repo.
type TestRepo struct {
	mutex   sync.Mutex
	records map[string]map[int]Record
	lastID  map[string]int
	Err     error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		records: map[string]map[int]Record{},
		lastID:  map[string]int{},
	}
}

// Seed stores a record as-is (id included), bypassing validation.
func (r *TestRepo) Seed(schema Schema, rec Record) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.records[schema.Table] == nil {
		r.records[schema.Table] = map[int]Record{}
	}
	id := rec.ID()
	if id > r.lastID[schema.Table] {
		r.lastID[schema.Table] = id
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = time.Now()
	}
	r.records[schema.Table][id] = rec
}

func (r *TestRepo) List(_ context.Context, schema Schema, limit, offset int) ([]Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := make([]Record, 0, len(r.records[schema.Table]))
	for _, rec := range r.records[schema.Table] {
		all = append(all, copyRecord(rec))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID() > all[j].ID()
	})

	if offset >= len(all) {
		return []Record{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *TestRepo) Get(_ context.Context, schema Schema, id int) (Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.records[schema.Table][id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return copyRecord(rec), nil
}

func (r *TestRepo) Create(_ context.Context, schema Schema, values map[string]any) (Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if len(values) == 0 {
		return nil, errors.New("no values to insert")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.records[schema.Table] == nil {
		r.records[schema.Table] = map[int]Record{}
	}
	r.lastID[schema.Table]++
	id := r.lastID[schema.Table]

	rec := Record{"id": id, "created_at": time.Now()}
	for _, column := range schema.Columns() {
		rec[column] = toOutput(schema, column, values[column])
	}
	r.records[schema.Table][id] = rec
	return copyRecord(rec), nil
}

func (r *TestRepo) Update(_ context.Context, schema Schema, id int, values map[string]any) (Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.records[schema.Table][id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	for column, value := range values {
		if _, known := schema.Field(column); known {
			rec[column] = toOutput(schema, column, value)
		}
	}
	return copyRecord(rec), nil
}

func (r *TestRepo) Delete(_ context.Context, schema Schema, id int) (Record, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, ok := r.records[schema.Table][id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	delete(r.records[schema.Table], id)
	return rec, nil
}

func toOutput(schema Schema, column string, value any) any {
	switch v := value.(type) {
	case int64:
		return int(v)
	case time.Time:
		if f, ok := schema.Field(column); ok && f.Kind == KindDate {
			return v.Format(DateLayout)
		}
	}
	return value
}

func copyRecord(rec Record) Record {
	c := make(Record, len(rec))
	for k, v := range rec {
		c[k] = v
	}
	return c
}
