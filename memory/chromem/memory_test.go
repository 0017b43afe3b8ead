package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyh7/MLE-agent/memory"
	"github.com/wyh7/MLE-agent/memory/embedder/mock"
)

func newTestMemory(t *testing.T, opts ...memory.Option) memory.Memory {
	t.Helper()
	return NewMemory(append([]memory.Option{
		memory.WithLocation(t.TempDir()),
		memory.WithEmbedder(mock.NewEmbedder(32)),
	}, opts...)...)
}

func TestAddAndCount(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	ids, err := m.Add(ctx, []memory.Item{
		{Query: "how do I load a csv", Response: "use pandas"},
		{Query: "how do I train a model", Response: "use sklearn"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQuery_ReturnsStoredExchange(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Add(ctx, []memory.Item{
		{Query: "what is gradient descent", Response: "an optimizer"},
		{Query: "how do I plot a histogram", Response: "use matplotlib"},
	})
	require.NoError(t, err)

	results, err := m.Query(ctx, []string{"what is gradient descent"}, memory.WithQueryLimit(1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0], 1)

	top := results[0][0]
	assert.Equal(t, "what is gradient descent", top.Text)
	assert.Equal(t, "an optimizer", top.Metadata["response"])
}

func TestQuery_LimitClampedToCount(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Add(ctx, []memory.Item{{Query: "q", Response: "r"}})
	require.NoError(t, err)

	results, err := m.Query(ctx, []string{"q"}, memory.WithQueryLimit(10))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0], 1)
}

func TestQuery_EmptyCollection(t *testing.T) {
	m := newTestMemory(t)

	results, err := m.Query(context.Background(), []string{"anything"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0])
}

func TestGet_ById(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	ids, err := m.Add(ctx, []memory.Item{{Query: "q", Response: "r"}})
	require.NoError(t, err)

	records, err := m.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "q", records[0].Text)
	assert.Equal(t, "r", records[0].Metadata["response"])
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestGet_All(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Add(ctx, []memory.Item{
		{Query: "q1", Response: "r1"},
		{Query: "q2", Response: "r2"},
		{Query: "q3", Response: "r3"},
	})
	require.NoError(t, err)

	records, err := m.Get(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestGet_MissingCollection(t *testing.T) {
	m := newTestMemory(t)

	_, err := m.Get(context.Background(), "", memory.WithGetCollection("nope"))
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)
}

func TestPeek_Limit(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Add(ctx, []memory.Item{
		{Query: "q1", Response: "r1"},
		{Query: "q2", Response: "r2"},
		{Query: "q3", Response: "r3"},
	})
	require.NoError(t, err)

	records, err := m.Peek(ctx, memory.WithPeekLimit(2))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDelete(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	ids, err := m.Add(ctx, []memory.Item{{Query: "q", Response: "r"}})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, ids[0]))

	count, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDrop_Missing(t *testing.T) {
	m := newTestMemory(t)

	err := m.Drop(context.Background(), memory.WithDropCollection("nope"))
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)
}

func TestReset_GatedByDefault(t *testing.T) {
	m := newTestMemory(t)

	err := m.Reset(context.Background())
	assert.ErrorIs(t, err, memory.ErrResetNotAllowed)
}

func TestReset_Allowed(t *testing.T) {
	m := newTestMemory(t, memory.WithAllowReset(true))
	ctx := context.Background()

	_, err := m.Add(ctx, []memory.Item{{Query: "q", Response: "r"}})
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))

	_, err = m.Count(ctx)
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	embedder := mock.NewEmbedder(32)

	m := NewMemory(
		memory.WithLocation(dir),
		memory.WithEmbedder(embedder),
	)

	ids, err := m.Add(ctx, []memory.Item{{Query: "persisted", Response: "yes"}})
	require.NoError(t, err)

	reopened := NewMemory(
		memory.WithLocation(dir),
		memory.WithEmbedder(embedder),
	)

	records, err := reopened.Get(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "persisted", records[0].Text)
}

func TestNewMemory_RequiresLocation(t *testing.T) {
	assert.Panics(t, func() {
		NewMemory(memory.WithEmbedder(mock.NewEmbedder(32)))
	})
}
