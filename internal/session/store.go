// Package session keeps registration wizard sessions between requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/cityhall/employee-registry/internal/wizard"
)

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("registration session not found")

// Session is one open registration wizard and the lookup lists it was opened with
type Session struct {
	ID         string            `json:"id"`
	State      wizard.State      `json:"state"`
	References wizard.References `json:"references"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Store persists sessions by id
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
