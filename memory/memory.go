package memory

import (
	"context"
	"errors"
)

const (
	// DBDirName is the subdirectory, under the project path, that holds
	// the on-disk database files of embedded backends.
	DBDirName = ".mle"

	// DefaultCollection is the collection/table every backend falls back
	// to when a call does not name one.
	DefaultCollection = "memory"
)

var (
	// ErrCollectionNotFound wraps the backend's signal that a named
	// collection/table does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrResetNotAllowed is returned by backends that require an explicit
	// opt-in before wiping all data.
	ErrResetNotAllowed = errors.New("reset is not allowed for this memory; opt in with WithAllowReset")
)

// Memory is a CRUD facade over a vector store. Implementations forward
// each call to an underlying client and add no retry, backpressure, or
// consistency guarantees of their own.
type Memory interface {
	Add(ctx context.Context, items []Item, opts ...AddOption) ([]string, error)
	Query(ctx context.Context, texts []string, opts ...QueryOption) ([][]Record, error)
	Get(ctx context.Context, id string, opts ...GetOption) ([]Record, error)
	Peek(ctx context.Context, opts ...PeekOption) ([]Record, error)
	Delete(ctx context.Context, id string, opts ...DeleteOption) error
	Drop(ctx context.Context, opts ...DropOption) error
	Count(ctx context.Context, opts ...CountOption) (int, error)
	Reset(ctx context.Context) error
}
