package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by GetByID when no row matches the id within the
// given tenant.
var ErrNotFound = errors.New("record not found")

// ReadStore is the query side for one entity type. Every call takes the
// tenant id explicitly instead of reading the ambient scope, so reads can run
// against a replica connection with no scoping callbacks installed. The table
// name is passed in by the caller; there is no naming convention.
type ReadStore[T any] struct {
	db    *gorm.DB
	table string
}

func NewReadStore[T any](db *gorm.DB, table string) *ReadStore[T] {
	return &ReadStore[T]{db: db, table: table}
}

func (s *ReadStore[T]) GetByID(ctx context.Context, id, tenantID uuid.UUID) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *ReadStore[T]) GetAll(ctx context.Context, tenantID uuid.UUID) ([]T, error) {
	var entities []T
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&entities).Error
	return entities, err
}

func (s *ReadStore[T]) GetPaged(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]T, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	var entities []T
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entities).Error
	return entities, err
}

func (s *ReadStore[T]) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

func (s *ReadStore[T]) Exists(ctx context.Context, id, tenantID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&count).Error
	return count > 0, err
}
