// Package store persists quiz records. The Store interface is the seam
// the rest of the system depends on; SQLStore is the real local vault and
// the in-memory store backs tests.
package store

import (
	"context"
	"errors"

	"github.com/quizvault/quizvault/internal/quiz"
)

// ErrNotFound is returned for reads and deletes of unknown ids.
var ErrNotFound = errors.New("quiz not found")

// ErrBadField is returned when GetAllByField is asked for a field that is
// not filterable.
var ErrBadField = errors.New("field not filterable")

// Store is the persistence collaborator. Put with an existing id
// overwrites the whole record (last write wins; mutations all originate
// from single-threaded UI callbacks, so there is no finer-grained
// locking).
type Store interface {
	Put(ctx context.Context, z quiz.Quiz) error
	Get(ctx context.Context, id string) (quiz.Quiz, error)
	GetAll(ctx context.Context) ([]quiz.Quiz, error)
	GetAllByField(ctx context.Context, field, value string) ([]quiz.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// filterableFields maps external field names onto columns. Anything else
// is rejected rather than interpolated.
var filterableFields = map[string]string{
	"notebook":   "notebook",
	"section":    "section",
	"part":       "part",
	"title":      "title",
	"sourceHash": "source_hash",
}
