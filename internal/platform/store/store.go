// Package store provides a generic GORM-backed persistence layer for
// soft-deletable records.
//
// Every read takes an explicit includeDeleted flag. Nothing is filtered behind
// the caller's back: a query sees soft-deleted rows only when it asks for them.
// Records must have an "id" primary key and a nullable "deleted_at" column
// (embed model.SoftDelete).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the id and view.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// Scope narrows a query. It has the same signature as a GORM scope.
type Scope = func(*gorm.DB) *gorm.DB

// DefaultOrder lists newest records first, then the most recently updated.
const DefaultOrder = "created_at DESC, updated_at DESC, id DESC"

// Store performs create/read/update/soft delete/restore/hard delete on T.
type Store[T any] struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Store for records of type T.
func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db, now: time.Now}
}

// view returns a query over T restricted to alive rows unless includeDeleted.
func (s *Store[T]) view(ctx context.Context, includeDeleted bool, scopes ...Scope) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	if !includeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	return q.Scopes(scopes...)
}

// DB returns a query bound to ctx and scoped to T, with no view filter.
// It is meant for single-column writes the Store does not cover.
func (s *Store[T]) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T))
}

// Create inserts a new record.
func (s *Store[T]) Create(ctx context.Context, rec *T) error {
	if rec == nil {
		return errors.New("store: nil record")
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *Store[T]) Get(ctx context.Context, id uint, includeDeleted bool, scopes ...Scope) (*T, error) {
	var rec T
	if err := s.view(ctx, includeDeleted, scopes...).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// First returns the first record matching the scopes.
func (s *Store[T]) First(ctx context.Context, includeDeleted bool, scopes ...Scope) (*T, error) {
	var rec T
	if err := s.view(ctx, includeDeleted, scopes...).Order(DefaultOrder).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// List returns the records matching the scopes in DefaultOrder.
func (s *Store[T]) List(ctx context.Context, includeDeleted bool, scopes ...Scope) ([]T, error) {
	var recs []T
	if err := s.view(ctx, includeDeleted, scopes...).Order(DefaultOrder).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the number of records matching the scopes.
func (s *Store[T]) Count(ctx context.Context, includeDeleted bool, scopes ...Scope) (int64, error) {
	var n int64
	if err := s.view(ctx, includeDeleted, scopes...).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Update overwrites the given columns of an alive record in one statement.
// updated_at is bumped by GORM. An empty field map only checks existence.
func (s *Store[T]) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := s.Get(ctx, id, false)
		return err
	}
	res := s.view(ctx, false).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at on an alive record. Only that column is written.
func (s *Store[T]) SoftDelete(ctx context.Context, id uint) error {
	res := s.view(ctx, false).
		Where("id = ?", id).
		UpdateColumn("deleted_at", s.now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears deleted_at on a soft-deleted record.
func (s *Store[T]) Restore(ctx context.Context, id uint) error {
	res := s.view(ctx, true).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", gorm.Expr("NULL"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HardDelete permanently removes the record, alive or not. It cannot be undone.
func (s *Store[T]) HardDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("hard delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Where filters by a SQL condition.
func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// Preload eagerly loads an association.
func Preload(assoc string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(assoc)
	}
}

// Paginate limits the result to one page. A non-positive limit disables it.
func Paginate(offset, limit int) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if offset < 0 {
			offset = 0
		}
		return db.Offset(offset).Limit(limit)
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
