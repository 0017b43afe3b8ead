package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wyh7/MLE-agent/memory"
	getsafe "github.com/wyh7/MLE-agent/util/get_safe"
)

type qdrantMemory struct {
	options memory.Options
	client  *http.Client
}

func (m *qdrantMemory) Add(ctx context.Context, items []memory.Item, opts ...memory.AddOption) ([]string, error) {
	options := memory.NewAddOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if len(options.Ids) > 0 && len(options.Ids) != len(items) {
		return nil, fmt.Errorf("got %d ids for %d items", len(options.Ids), len(items))
	}

	ids := memory.NewIds(options.Ids, len(items))

	if err := m.ensureCollection(ctx, collection); err != nil {
		return nil, err
	}

	addedAt := time.Now().UTC().Format(time.RFC3339Nano)

	points := make([]map[string]any, 0, len(items))

	for i, item := range items {
		vector, err := m.options.Embedder.Embed(ctx, item.Query)
		if err != nil {
			return nil, err
		}

		points = append(points, map[string]any{
			"id":     ids[i],
			"vector": vector,
			"payload": map[string]any{
				"text":       item.Query,
				"response":   item.Response,
				"created_at": addedAt,
			},
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(collection))

	if err := m.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return nil, err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return nil, errors.New(rsp.Status.Error)
	}

	return ids, nil
}

func (m *qdrantMemory) Query(ctx context.Context, texts []string, opts ...memory.QueryOption) ([][]memory.Record, error) {
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

		req := map[string]any{
			"vector":       vector,
			"limit":        options.Limit,
			"with_vector":  true,
			"with_payload": true,
		}

		var rsp qdrantEnvelope[[]qdrantPoint]

		path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(collection))

		if err := m.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
			return nil, err
		}

		records := make([]memory.Record, 0, len(rsp.Result))
		for _, point := range rsp.Result {
			records = append(records, pointToRecord(point))
		}

		results = append(results, records)
	}

	return results, nil
}

func (m *qdrantMemory) Get(ctx context.Context, id string, opts ...memory.GetOption) ([]memory.Record, error) {
	options := memory.NewGetOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	if len(id) == 0 {
		count, err := m.Count(ctx, memory.WithCountCollection(collection))
		if err != nil {
			return nil, err
		}
		return m.scroll(ctx, collection, count)
	}

	var rsp qdrantEnvelope[qdrantPoint]

	path := fmt.Sprintf("/collections/%s/points/%s", url.PathEscape(collection), url.PathEscape(id))

	if err := m.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}

	return []memory.Record{pointToRecord(rsp.Result)}, nil
}

func (m *qdrantMemory) Peek(ctx context.Context, opts ...memory.PeekOption) ([]memory.Record, error) {
	options := memory.NewPeekOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	return m.scroll(ctx, collection, options.Limit)
}

func (m *qdrantMemory) Delete(ctx context.Context, id string, opts ...memory.DeleteOption) error {
	options := memory.NewDeleteOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	req := map[string]any{
		"points": []string{id},
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(collection))

	if err := m.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (m *qdrantMemory) Drop(ctx context.Context, opts ...memory.DropOption) error {
	options := memory.NewDropOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	exists, err := m.collectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	var rsp qdrantEnvelope[bool]

	path := fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	if err := m.do(ctx, http.MethodDelete, path, nil, &rsp); err != nil {
		return err
	}

	if !rsp.Result {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}

	return nil
}

func (m *qdrantMemory) Count(ctx context.Context, opts ...memory.CountOption) (int, error) {
	options := memory.NewCountOptions(opts...)

	collection := options.Collection
	if len(collection) == 0 {
		collection = m.options.Collection
	}

	req := map[string]any{
		"exact": true,
	}

	var rsp qdrantEnvelope[qdrantCountResult]

	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(collection))

	if err := m.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return 0, err
	}

	return rsp.Result.Count, nil
}

func (m *qdrantMemory) Reset(ctx context.Context) error {
	var rsp qdrantEnvelope[qdrantCollectionsResult]

	if err := m.do(ctx, http.MethodGet, "/collections", nil, &rsp); err != nil {
		return err
	}

	for _, col := range rsp.Result.Collections {
		path := fmt.Sprintf("/collections/%s", url.PathEscape(col.Name))
		if err := m.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
			return err
		}
	}

	return nil
}

func (m *qdrantMemory) scroll(ctx context.Context, collection string, limit int) ([]memory.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	req := map[string]any{
		"limit":        limit,
		"with_vector":  true,
		"with_payload": true,
	}

	var rsp qdrantEnvelope[qdrantScrollResult]

	path := fmt.Sprintf("/collections/%s/points/scroll", url.PathEscape(collection))

	if err := m.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	records := make([]memory.Record, 0, len(rsp.Result.Points))
	for _, point := range rsp.Result.Points {
		records = append(records, pointToRecord(point))
	}

	return records, nil
}

func (m *qdrantMemory) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := m.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(m.options.ApiKey) > 0 {
		request.Header.Set("api-key", m.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+m.options.ApiKey)
	}

	response, err := m.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func (m *qdrantMemory) ensureCollection(ctx context.Context, collection string) error {
	exists, err := m.collectionExists(ctx, collection)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return m.createCollection(ctx, collection)
}

func (m *qdrantMemory) collectionExists(ctx context.Context, collection string) (bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	var rsp qdrantEnvelope[json.RawMessage]

	err := m.do(ctx, http.MethodGet, path, nil, &rsp)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}

	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (m *qdrantMemory) createCollection(ctx context.Context, collection string) error {
	distance := m.options.Distance
	if len(distance) == 0 {
		distance = "Cosine"
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     m.options.VectorSize,
			"distance": distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(collection))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := m.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func pointToRecord(point qdrantPoint) memory.Record {
	createdAt, _ := time.Parse(time.RFC3339Nano, getsafe.String(point.Payload, "created_at"))

	metadata := map[string]any{
		"response":   getsafe.String(point.Payload, "response"),
		"created_at": getsafe.String(point.Payload, "created_at"),
	}

	return memory.Record{
		Id:        point.Id,
		Text:      getsafe.String(point.Payload, "text"),
		Metadata:  metadata,
		Embedding: point.Vector,
		Score:     float32(point.Score),
		CreatedAt: createdAt,
	}
}

func NewMemory(opts ...memory.Option) memory.Memory {
	options := memory.NewOptions(opts...)

	if len(options.Location) == 0 || options.VectorSize == 0 {
		panic("missing location or vector size for qdrant memory")
	}

	if options.Embedder == nil {
		panic("missing embedder for qdrant memory")
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}

	return &qdrantMemory{
		options: options,
		client:  client,
	}
}
