package ports

import (
	"context"

	"github.com/aretw0/workpad/pkg/domain"
)

// WorkpadStore defines the interface for persisting workpad documents.
type WorkpadStore interface {
	// Save persists the workpad under its ID, replacing any previous version.
	Save(ctx context.Context, wp *domain.Workpad) error

	// Load retrieves the workpad for a given ID.
	// Returns domain.ErrWorkpadNotFound if the workpad does not exist.
	Load(ctx context.Context, id string) (*domain.Workpad, error)

	// Delete removes the workpad for a given ID. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored workpads.
	List(ctx context.Context) ([]string, error)
}
