package chromem

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/wyh7/MLE-agent/memory"
)

// peekProbe is the text every enumeration-style read is ranked against.
// chromem has no scan API, so Get-all and Peek query with a fixed probe
// and a result window as large as the collection.
const peekProbe = "memory"

type chromemMemory struct {
	options memory.Options
	db      *chromem.DB
	embed   chromem.EmbeddingFunc
}

func (m *chromemMemory) Add(ctx context.Context, items []memory.Item, opts ...memory.AddOption) ([]string, error) {
	options := memory.NewAddOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if len(options.Ids) > 0 && len(options.Ids) != len(items) {
		return nil, fmt.Errorf("got %d ids for %d items", len(options.Ids), len(items))
	}

	ids := memory.NewIds(options.Ids, len(items))

	col, err := m.db.GetOrCreateCollection(collection, nil, m.embed)
	if err != nil {
		return nil, err
	}

	addedAt := time.Now().UTC().Format(time.RFC3339Nano)

	for i, item := range items {
		doc := chromem.Document{
			ID:      ids[i],
			Content: item.Query,
			Metadata: map[string]string{
				"response":   item.Response,
				"created_at": addedAt,
			},
		}

		// no explicit embedding: chromem computes one with the
		// collection's embedding func
		if err := col.AddDocument(ctx, doc); err != nil {
			return nil, err
		}
	}

	return ids, nil
}

func (m *chromemMemory) Query(ctx context.Context, texts []string, opts ...memory.QueryOption) ([][]memory.Record, error) {
	options := memory.NewQueryOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if options.Limit < 1 {
		return nil, nil
	}

	col, err := m.db.GetOrCreateCollection(collection, nil, m.embed)
	if err != nil {
		return nil, err
	}

	results := make([][]memory.Record, 0, len(texts))

	for _, text := range texts {
		limit := options.Limit
		if count := col.Count(); count < limit {
			limit = count
		}

		if limit == 0 {
			results = append(results, nil)
			continue
		}

		found, err := col.Query(ctx, text, limit, nil, nil)
		if err != nil {
			return nil, err
		}

		records := make([]memory.Record, 0, len(found))
		for _, res := range found {
			records = append(records, resultToRecord(res))
		}

		results = append(results, records)
	}

	return results, nil
}

func (m *chromemMemory) Get(ctx context.Context, id string, opts ...memory.GetOption) ([]memory.Record, error) {
	options := memory.NewGetOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	col := m.db.GetCollection(collection, m.embed)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	if len(id) == 0 {
		return m.scan(ctx, col, col.Count())
	}

	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return []memory.Record{documentToRecord(doc)}, nil
}

func (m *chromemMemory) Peek(ctx context.Context, opts ...memory.PeekOption) ([]memory.Record, error) {
	options := memory.NewPeekOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	col := m.db.GetCollection(collection, m.embed)
	if col == nil {
		return nil, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	limit := options.Limit
	if count := col.Count(); count < limit {
		limit = count
	}

	return m.scan(ctx, col, limit)
}

func (m *chromemMemory) Delete(ctx context.Context, id string, opts ...memory.DeleteOption) error {
	options := memory.NewDeleteOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	col := m.db.GetCollection(collection, m.embed)
	if col == nil {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	return col.Delete(ctx, nil, nil, id)
}

func (m *chromemMemory) Drop(ctx context.Context, opts ...memory.DropOption) error {
	options := memory.NewDropOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if col := m.db.GetCollection(collection, m.embed); col == nil {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	return m.db.DeleteCollection(collection)
}

func (m *chromemMemory) Count(ctx context.Context, opts ...memory.CountOption) (int, error) {
	options := memory.NewCountOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	col := m.db.GetCollection(collection, m.embed)
	if col == nil {
		return 0, fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	return col.Count(), nil
}

func (m *chromemMemory) Reset(ctx context.Context) error {
	if !m.options.AllowReset {
		return memory.ErrResetNotAllowed
	}

	for name := range m.db.ListCollections() {
		if err := m.db.DeleteCollection(name); err != nil {
			return err
		}
	}

	return nil
}

func (m *chromemMemory) scan(ctx context.Context, col *chromem.Collection, limit int) ([]memory.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	vector, err := m.embed(ctx, peekProbe)
	if err != nil {
		return nil, err
	}

	found, err := col.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, err
	}

	records := make([]memory.Record, 0, len(found))
	for _, res := range found {
		records = append(records, resultToRecord(res))
	}

	return records, nil
}

func resultToRecord(res chromem.Result) memory.Record {
	return memory.Record{
		Id:        res.ID,
		Text:      res.Content,
		Metadata:  stringMetadata(res.Metadata),
		Embedding: res.Embedding,
		Score:     res.Similarity,
		CreatedAt: createdAt(res.Metadata),
	}
}

func documentToRecord(doc chromem.Document) memory.Record {
	return memory.Record{
		Id:        doc.ID,
		Text:      doc.Content,
		Metadata:  stringMetadata(doc.Metadata),
		Embedding: doc.Embedding,
		CreatedAt: createdAt(doc.Metadata),
	}
}

func stringMetadata(metadata map[string]string) map[string]any {
	result := make(map[string]any, len(metadata))
	for k, v := range metadata {
		result[k] = v
	}
	return result
}

func createdAt(metadata map[string]string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, metadata["created_at"])
	return t
}

func NewMemory(opts ...memory.Option) memory.Memory {
	options := memory.NewOptions(opts...)

	if len(options.Location) == 0 {
		panic("missing project path for chromem memory")
	}

	db, err := chromem.NewPersistentDB(filepath.Join(options.Location, memory.DBDirName), false)
	if err != nil {
		panic(err)
	}

	m := &chromemMemory{
		options: options,
		db:      db,
	}

	// the configured embedder wins; otherwise chromem's default
	// (hosted OpenAI) computes embeddings store-side
	if options.Embedder != nil {
		m.embed = func(ctx context.Context, text string) ([]float32, error) {
			return options.Embedder.Embed(ctx, text)
		}
	} else {
		m.embed = chromem.NewEmbeddingFuncDefault()
	}

	if _, err := m.db.GetOrCreateCollection(options.Collection, nil, m.embed); err != nil {
		panic(err)
	}

	return m
}
