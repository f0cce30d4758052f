// Package repository persists the admin games list and the contact log as
// flat files.
package repository

import (
	"context"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// GameStore provides read/write access to the admin-managed games list.
type GameStore interface {
	// ReadAll returns every game in stored order. A missing file is an empty list.
	ReadAll(ctx context.Context) ([]model.Game, error)
	// WriteAll replaces the whole list.
	WriteAll(ctx context.Context, games []model.Game) error

	// Find returns the game with id or ErrNotFound.
	Find(ctx context.Context, id string) (model.Game, error)
	// Insert appends g. Returns ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, g model.Game) error
	// Update applies fn to the game with id and stores the result.
	Update(ctx context.Context, id string, fn func(*model.Game)) (model.Game, error)
	// Delete removes the game with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored games, zero when unreadable.
	Count(ctx context.Context) int
}

// ContactLog is the append-only record of contact submissions.
type ContactLog interface {
	Append(ctx context.Context, sub model.ContactSubmission) error
}
