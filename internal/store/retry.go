package store

import (
	"context"
	"errors"
	"net"
	"time"

	"gorm.io/gorm"

	"github.com/hugh/buildtrack/internal/tenant"
)

const (
	maxRetries     = 3
	retryBaseDelay = 100 * time.Millisecond
)

// isRetryable reports whether err is a transient connectivity failure worth
// another attempt. Constraint violations, missing rows and scope errors are
// deterministic and never retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, tenant.ErrNoScope) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// withRetry runs fn up to maxRetries+1 times with exponential backoff.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil || !isRetryable(err) || attempt >= maxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay << attempt):
		}
	}
}
