package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyh7/MLE-agent/memory"
	"github.com/wyh7/MLE-agent/memory/embedder/mock"
	"github.com/wyh7/MLE-agent/memory/inmemory"
)

func newTestService() *Service {
	return New(inmemory.NewMemory(
		memory.WithEmbedder(mock.NewEmbedder(32)),
	))
}

func TestAdd_RequiresItems(t *testing.T) {
	s := newTestService()

	_, err := s.Add(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAdd_ForwardsCollectionAndIds(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	ids, err := s.Add(ctx, []memory.Item{{Query: "q", Response: "r"}}, "scratch", []string{"rec-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, ids)

	count, err := s.Count(ctx, "scratch")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// default collection untouched
	_, err = s.Count(ctx, "")
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)
}

func TestQuery_RequiresTexts(t *testing.T) {
	s := newTestService()

	_, err := s.Query(context.Background(), nil, "", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDelete_RequiresId(t *testing.T) {
	s := newTestService()

	assert.ErrorIs(t, s.Delete(context.Background(), "", ""), ErrInvalidArgument)
}

func TestDrop_RequiresCollection(t *testing.T) {
	s := newTestService()

	assert.ErrorIs(t, s.Drop(context.Background(), ""), ErrInvalidArgument)
}

func TestPeek_ForwardsLimit(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.Add(ctx, []memory.Item{
		{Query: "q1", Response: "r1"},
		{Query: "q2", Response: "r2"},
		{Query: "q3", Response: "r3"},
	}, "", nil)
	require.NoError(t, err)

	records, err := s.Peek(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
