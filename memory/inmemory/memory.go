package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wyh7/MLE-agent/memory"
)

// inMemoryMemory keeps collections in process memory. It backs tests and
// offline runs; nothing is persisted.
type inMemoryMemory struct {
	options     memory.Options
	collections map[string]map[string]memory.Record
	mtx         sync.RWMutex
}

func (m *inMemoryMemory) Add(ctx context.Context, items []memory.Item, opts ...memory.AddOption) ([]string, error) {
	options := memory.NewAddOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if len(options.Ids) > 0 && len(options.Ids) != len(items) {
		return nil, fmt.Errorf("got %d ids for %d items", len(options.Ids), len(items))
	}

	ids := memory.NewIds(options.Ids, len(items))

	now := time.Now().UTC()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	records, exists := m.collections[collection]
	if !exists {
		records = map[string]memory.Record{}
		m.collections[collection] = records
	}

	for i, item := range items {
		vector, err := m.options.Embedder.Embed(ctx, item.Query)
		if err != nil {
			return nil, err
		}

		records[ids[i]] = memory.Record{
			Id:        ids[i],
			Text:      item.Query,
			Metadata:  map[string]any{"response": item.Response, "created_at": now.Format(time.RFC3339Nano)},
			Embedding: vector,
			CreatedAt: now,
		}
	}

	return ids, nil
}

func (m *inMemoryMemory) Query(ctx context.Context, texts []string, opts ...memory.QueryOption) ([][]memory.Record, error) {
	options := memory.NewQueryOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if options.Limit < 1 {
		return nil, nil
	}

	results := make([][]memory.Record, 0, len(texts))

	for _, text := range texts {
		vector, err := m.options.Embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		m.mtx.RLock()

		candidates := make([]memory.Record, 0, len(m.collections[collection]))
		for _, rec := range m.collections[collection] {
			rec.Score = float32(memory.CosineSimilarity(vector, rec.Embedding))
			candidates = append(candidates, rec)
		}

		m.mtx.RUnlock()

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})

		if len(candidates) > options.Limit {
			candidates = candidates[:options.Limit]
		}

		results = append(results, candidates)
	}

	return results, nil
}

func (m *inMemoryMemory) Get(ctx context.Context, id string, opts ...memory.GetOption) ([]memory.Record, error) {
	options := memory.NewGetOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	records, exists := m.collections[collection]
	if !exists {
		return nil, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	if len(id) == 0 {
		all := make([]memory.Record, 0, len(records))
		for _, rec := range records {
			all = append(all, rec)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })
		return all, nil
	}

	rec, exists := records[id]
	if !exists {
		return nil, fmt.Errorf("record not found: %s", id)
	}

	return []memory.Record{rec}, nil
}

func (m *inMemoryMemory) Peek(ctx context.Context, opts ...memory.PeekOption) ([]memory.Record, error) {
	options := memory.NewPeekOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	records, err := m.Get(ctx, "", memory.WithGetCollection(collection))
	if err != nil {
		return nil, err
	}

	if len(records) > options.Limit {
		records = records[:options.Limit]
	}

	return records, nil
}

func (m *inMemoryMemory) Delete(ctx context.Context, id string, opts ...memory.DeleteOption) error {
	options := memory.NewDeleteOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	records, exists := m.collections[collection]
	if !exists {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	delete(records, id)

	return nil
}

func (m *inMemoryMemory) Drop(ctx context.Context, opts ...memory.DropOption) error {
	options := memory.NewDropOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, exists := m.collections[collection]; !exists {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	delete(m.collections, collection)

	return nil
}

func (m *inMemoryMemory) Count(ctx context.Context, opts ...memory.CountOption) (int, error) {
	options := memory.NewCountOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	records, exists := m.collections[collection]
	if !exists {
		return 0, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	return len(records), nil
}

func (m *inMemoryMemory) Reset(ctx context.Context) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.collections = map[string]map[string]memory.Record{}

	return nil
}

func NewMemory(opts ...memory.Option) memory.Memory {
	options := memory.NewOptions(opts...)

	if options.Embedder == nil {
		panic("missing embedder for in-memory memory")
	}

	return &inMemoryMemory{
		options:     options,
		collections: map[string]map[string]memory.Record{},
	}
}
