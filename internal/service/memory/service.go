package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyh7/MLE-agent/memory"
)

// ErrInvalidArgument marks request validation failures so transports can
// map them to a client error rather than a backend one.
var ErrInvalidArgument = errors.New("invalid argument")

// Service fronts the memory facade for transports: it validates input
// and forwards; backend errors pass through for the transport to map.
type Service struct {
	memory memory.Memory
}

func (s *Service) Add(ctx context.Context, items []memory.Item, collection string, ids []string) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidArgument)
	}

	opts := []memory.AddOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithAddCollection(collection))
	}
	if len(ids) > 0 {
		opts = append(opts, memory.WithAddIds(ids))
	}

	return s.memory.Add(ctx, items, opts...)
}

func (s *Service) Query(ctx context.Context, texts []string, collection string, limit int) ([][]memory.Record, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: at least one query text is required", ErrInvalidArgument)
	}

	opts := []memory.QueryOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithQueryCollection(collection))
	}
	if limit > 0 {
		opts = append(opts, memory.WithQueryLimit(limit))
	}

	return s.memory.Query(ctx, texts, opts...)
}

func (s *Service) Get(ctx context.Context, id string, collection string) ([]memory.Record, error) {
	opts := []memory.GetOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithGetCollection(collection))
	}

	return s.memory.Get(ctx, id, opts...)
}

func (s *Service) Peek(ctx context.Context, collection string, limit int) ([]memory.Record, error) {
	opts := []memory.PeekOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithPeekCollection(collection))
	}
	if limit > 0 {
		opts = append(opts, memory.WithPeekLimit(limit))
	}

	return s.memory.Peek(ctx, opts...)
}

func (s *Service) Delete(ctx context.Context, id string, collection string) error {
	if len(id) == 0 {
		return fmt.Errorf("%w: record id is required", ErrInvalidArgument)
	}

	opts := []memory.DeleteOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithDeleteCollection(collection))
	}

	return s.memory.Delete(ctx, id, opts...)
}

func (s *Service) Drop(ctx context.Context, collection string) error {
	if len(collection) == 0 {
		return fmt.Errorf("%w: collection is required", ErrInvalidArgument)
	}

	return s.memory.Drop(ctx, memory.WithDropCollection(collection))
}

func (s *Service) Count(ctx context.Context, collection string) (int, error) {
	opts := []memory.CountOption{}
	if len(collection) > 0 {
		opts = append(opts, memory.WithCountCollection(collection))
	}

	return s.memory.Count(ctx, opts...)
}

func (s *Service) Reset(ctx context.Context) error {
	return s.memory.Reset(ctx)
}

func New(m memory.Memory) *Service {
	return &Service{
		memory: m,
	}
}
