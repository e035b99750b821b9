package userapi

import (
	"context"
	"database/sql"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Users is the persistence contract for user records. Lookups signal absence
// with a nil record rather than an error; the service layer decides whether
// absence is a client-facing failure.
type Users interface {
	Create(ctx context.Context, record *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates the Bun-backed user store
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// Create allocates an id, persists the record, and returns it. A unique-email
// violation surfaces as ErrEmailTaken.
func (r *users) Create(ctx context.Context, record *User) (*User, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := nowRef()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create user")
	}

	return record, nil
}

func (r *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "?TableAlias.id = ?", id)
}

func (r *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "?TableAlias.email = ?", email)
}

func (r *users) getOne(ctx context.Context, where string, arg any) (*User, error) {
	record := &User{}
	err := r.db.NewSelect().
		Model(record).
		Where(where, arg).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not retrieve user")
	}

	return record, nil
}

// Update persists a full record in place keyed by primary key
func (r *users) Update(ctx context.Context, record *User) (*User, error) {
	record.UpdatedAt = nowRef()

	if _, err := r.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update user")
	}

	return record, nil
}

// DeleteByID removes the record and reports how many rows went away (0 or 1)
func (r *users) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "could not delete user")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "could not read affected rows")
	}

	return affected, nil
}

// isUniqueViolation recognizes unique-constraint errors from pgdriver
// (SQLSTATE 23505) and from the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
