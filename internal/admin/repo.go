package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

var (
	_ accountsRepo      = (*Repo)(nil)
	_ auth.AccountStore = (*Repo)(nil)
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context) ([]Account, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.list")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT id, username, password_hash, created_at FROM admin ORDER BY id`)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query admins: %w", err)
	}

	accounts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Account])
	if err != nil {
		return nil, fmt.Errorf("collect admins: %w", err)
	}
	return accounts, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*Account, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.get")
	defer span.End()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(ctx, `SELECT id, username, password_hash, created_at FROM admin WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query admin %d: %w", id, err)
	}
	return collectAccount(rows)
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.getByUsername")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT id, username, password_hash, created_at FROM admin WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("query admin %s: %w", username, err)
	}
	return collectAccount(rows)
}

// PasswordHash serves credential checks at login.
func (r *Repo) PasswordHash(ctx context.Context, username string) (string, error) {
	account, err := r.GetByUsername(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		return "", auth.ErrUnknownAccount
	}
	if err != nil {
		return "", err
	}
	return account.PasswordHash, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.count")
	defer span.End()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admin`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

func (r *Repo) Create(ctx context.Context, username, passwordHash string) (*Account, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.create")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO admin (username, password_hash) VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at`,
		username, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}

	account, err := collectAccount(rows)
	if pkg.IsUniqueViolationError(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return account, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE admin SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update admin %d password: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Update changes the username, the password hash, or both in one statement.
// A nil argument keeps the stored value.
func (r *Repo) Update(ctx context.Context, id int, username, passwordHash *string) (*Account, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.update")
	defer span.End()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`UPDATE admin
		SET username = COALESCE($1, username), password_hash = COALESCE($2, password_hash)
		WHERE id = $3
		RETURNING id, username, password_hash, created_at`,
		username, passwordHash, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update admin %d: %w", id, err)
	}

	account, err := collectAccount(rows)
	if pkg.IsUniqueViolationError(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update admin %d: %w", id, err)
	}
	return account, err
}

// Delete locks every admin row for the duration of the check, so two concurrent
// deletes cannot both see two accounts and leave none behind.
func (r *Repo) Delete(ctx context.Context, id int, actingUsername string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.delete")
	defer span.End()
	span.SetAttributes(attribute.Int("id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Errorf("rollback admin delete tx: %s", err)
		}
	}()

	rows, err := tx.Query(ctx, `SELECT id, username, password_hash, created_at FROM admin ORDER BY id FOR UPDATE`)
	if err != nil {
		return fmt.Errorf("lock admins: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Account])
	if err != nil {
		return fmt.Errorf("collect admins: %w", err)
	}

	if err := checkDeletable(accounts, id, actingUsername); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM admin WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete admin %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit admin delete: %w", err)
	}
	return nil
}

func collectAccount(rows pgx.Rows) (*Account, error) {
	account, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[Account])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}
