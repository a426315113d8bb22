package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
)

var ErrRecordNotFound = errors.New("record not found")

var _ recordsRepo = (*Repo)(nil)

// Repo runs the CRUD statements for every schema. Table and column names come
// from the static schema list and are quoted, values are always bound.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, schema Schema, limit, offset int) ([]Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "contentRepo.list")
	defer span.End()
	span.SetAttributes(attribute.String("table", schema.Table))

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`SELECT %s FROM %s ORDER BY id DESC LIMIT $1 OFFSET $2`,
			selectList(schema), quote(schema.Table),
		),
		limitArg, offset,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query %s: %w", schema.Table, err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("collect %s rows: %w", schema.Table, err)
	}

	result := make([]Record, 0, len(records))
	for _, rec := range records {
		result = append(result, normalize(schema, rec))
	}
	return result, nil
}

func (r *Repo) Get(ctx context.Context, schema Schema, id int) (Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "contentRepo.get")
	defer span.End()
	span.SetAttributes(attribute.String("table", schema.Table), attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectList(schema), quote(schema.Table)),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", schema.Table, err)
	}

	return collectOne(schema, rows)
}

func (r *Repo) Create(ctx context.Context, schema Schema, values map[string]any) (Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "contentRepo.create")
	defer span.End()
	span.SetAttributes(attribute.String("table", schema.Table))

	columns, args := orderedValues(schema, values)
	if len(columns) == 0 {
		return nil, errors.New("no values to insert")
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
			quote(schema.Table), strings.Join(columns, ", "), strings.Join(placeholders, ", "), selectList(schema),
		),
		args...,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("insert into %s: %w", schema.Table, err)
	}

	rec, err := collectOne(schema, rows)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rec, nil
}

// Update sets only the given columns. With no values it just returns the current record.
func (r *Repo) Update(ctx context.Context, schema Schema, id int, values map[string]any) (Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "contentRepo.update")
	defer span.End()
	span.SetAttributes(attribute.String("table", schema.Table), attribute.Int("id", id))

	columns, args := orderedValues(schema, values)
	if len(columns) == 0 {
		return r.Get(ctx, schema, id)
	}

	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = column + " = $" + strconv.Itoa(i+1)
	}
	args = append(args, id)

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
			quote(schema.Table), strings.Join(assignments, ", "), len(args), selectList(schema),
		),
		args...,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update %s: %w", schema.Table, err)
	}

	return collectOne(schema, rows)
}

// Delete removes the record and returns it, so the caller can clean up its stored file.
func (r *Repo) Delete(ctx context.Context, schema Schema, id int) (Record, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "contentRepo.delete")
	defer span.End()
	span.SetAttributes(attribute.String("table", schema.Table), attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, quote(schema.Table), selectList(schema)),
		id,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("delete from %s: %w", schema.Table, err)
	}

	return collectOne(schema, rows)
}

func collectOne(schema Schema, rows pgx.Rows) (Record, error) {
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("collect %s row: %w", schema.Table, err)
	}
	return normalize(schema, rec), nil
}

// orderedValues returns quoted column names and their args in schema order.
func orderedValues(schema Schema, values map[string]any) ([]string, []any) {
	columns := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, column := range schema.Columns() {
		if v, ok := values[column]; ok {
			columns = append(columns, quote(column))
			args = append(args, v)
		}
	}
	return columns, args
}

func selectList(schema Schema) string {
	columns := []string{"id"}
	columns = append(columns, schema.Columns()...)
	columns = append(columns, "created_at")
	for i := range columns {
		columns[i] = quote(columns[i])
	}
	return strings.Join(columns, ", ")
}

func quote(identifier string) string {
	return pgx.Identifier{identifier}.Sanitize()
}

// normalize makes rows from the database look like rows from TestRepo:
// integer columns as int, DATE columns as "YYYY-MM-DD".
func normalize(schema Schema, row map[string]any) Record {
	rec := make(Record, len(row))
	for column, value := range row {
		switch v := value.(type) {
		case int32:
			value = int(v)
		case int64:
			value = int(v)
		case time.Time:
			if f, ok := schema.Field(column); ok && f.Kind == KindDate {
				value = v.Format(DateLayout)
			}
		}
		rec[column] = value
	}
	return rec
}
