package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WriteStore is the transactional, tenant-scoped write side for one entity
// type. The scoping callbacks installed on db do the actual enforcement; the
// store adds retry on transient failures and the explicit ownership check on
// DeleteByID.
type WriteStore[T any] struct {
	db *gorm.DB
}

func NewWriteStore[T any](db *gorm.DB) *WriteStore[T] {
	return &WriteStore[T]{db: db}
}

// Add inserts entity, with TenantID stamped from the request scope.
func (s *WriteStore[T]) Add(ctx context.Context, entity *T) error {
	return withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Create(entity).Error
	})
}

// AddRange inserts all entities in a single statement.
func (s *WriteStore[T]) AddRange(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	return withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Create(entities).Error
	})
}

// Update writes all fields of entity except tenant_id and created_at. A row
// belonging to another tenant is untouched: the scoping filter narrows the
// statement to the caller's tenant, so the update is a no-op.
func (s *WriteStore[T]) Update(ctx context.Context, entity *T) error {
	return withRetry(ctx, func() error {
		return s.db.WithContext(ctx).
			Model(entity).
			Select("*").
			Omit("tenant_id", "created_at").
			Updates(entity).Error
	})
}

// Delete removes entity by primary key within the request scope.
func (s *WriteStore[T]) Delete(ctx context.Context, entity *T) error {
	return withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Delete(entity).Error
	})
}

// DeleteByID removes the row with the given id if and only if it belongs to
// tenantID. The re-fetch deliberately steps outside the ambient filter so the
// ownership check runs against the caller-supplied tenant id; a mismatch is a
// no-op.
func (s *WriteStore[T]) DeleteByID(ctx context.Context, id, tenantID uuid.UUID) error {
	return withRetry(ctx, func() error {
		var entity T
		err := s.db.WithContext(CrossTenant(ctx)).
			Where("id = ? AND tenant_id = ?", id, tenantID).
			First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.db.WithContext(CrossTenant(ctx)).
			Where("tenant_id = ?", tenantID).
			Delete(&entity).Error
	})
}
