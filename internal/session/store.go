// Package session keeps per-visitor page state between requests.
package session

import (
	"context"
	"errors"
	"time"

	"vortexzz-apply/internal/models"
)

var (
	ErrNotFound = errors.New("SESSION_NOT_FOUND")
	ErrConflict = errors.New("SESSION_CONFLICT")
)

// UpdateFunc mutates a session in place. Returning an error aborts the update and
// nothing is written.
type UpdateFunc func(s *models.Session) error

// Store is an expiring session store. Update is an atomic read-modify-write: a missing
// or expired session is replaced by a fresh idle one before fn runs.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Clock is injected so TTL behaviour is testable.
type Clock func() time.Time
