package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyh7/MLE-agent/memory"
	"github.com/wyh7/MLE-agent/memory/embedder/mock"
)

// newMockMemory wires a postgresMemory directly onto a sqlmock conn,
// bypassing the DSN-based constructor.
func newMockMemory(t *testing.T) (*postgresMemory, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mk, err := sqlmock.New()
	require.NoError(t, err)

	p := &postgresMemory{
		options: memory.NewOptions(
			memory.WithVectorSize(3),
			memory.WithEmbedder(mock.NewEmbedder(3)),
		),
		conn: db,
	}

	return p, mk, db
}

func expectCollectionExists(mk sqlmock.Sqlmock, exists bool) {
	mk.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM memories WHERE collection = $1)")).
		WithArgs(memory.DefaultCollection).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func TestAdd_InsertsOneRowPerItem(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	mk.ExpectExec(regexp.QuoteMeta("INSERT INTO memories")).
		WithArgs("id1", memory.DefaultCollection, "q1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mk.ExpectExec(regexp.QuoteMeta("INSERT INTO memories")).
		WithArgs("id2", memory.DefaultCollection, "q2", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ids, err := p.Add(context.Background(), []memory.Item{
		{Query: "q1", Response: "r1"},
		{Query: "q2", Response: "r2"},
	}, memory.WithAddIds([]string{"id1", "id2"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id2"}, ids)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestQuery_ScansRankedRows(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "embedding", "score", "created_at"}).
		AddRow("id1", "what is gradient descent", `{"response":"an optimizer"}`, "[0.1,0.2,0.3]", 0.97, now)

	mk.ExpectQuery(regexp.QuoteMeta("FROM memories")).
		WithArgs(memory.DefaultCollection, sqlmock.AnyArg(), 5).
		WillReturnRows(rows)

	results, err := p.Query(context.Background(), []string{"what is gradient descent"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0], 1)

	rec := results[0][0]
	assert.Equal(t, "id1", rec.Id)
	assert.Equal(t, "what is gradient descent", rec.Text)
	assert.Equal(t, "an optimizer", rec.Metadata["response"])
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, rec.Embedding)
	assert.InDelta(t, 0.97, float64(rec.Score), 1e-5)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestGet_ById(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "embedding", "created_at"}).
		AddRow("id1", "q", `{"response":"r"}`, "[0.1,0.2,0.3]", time.Now().UTC())

	mk.ExpectQuery(regexp.QuoteMeta("FROM memories")).
		WithArgs(memory.DefaultCollection, "id1").
		WillReturnRows(rows)

	records, err := p.Get(context.Background(), "id1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "q", records[0].Text)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestGet_MissingId(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "embedding", "created_at"})

	mk.ExpectQuery(regexp.QuoteMeta("FROM memories")).
		WithArgs(memory.DefaultCollection, "nope").
		WillReturnRows(rows)

	_, err := p.Get(context.Background(), "nope")
	assert.ErrorContains(t, err, "record not found")

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestGet_MissingCollection(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, false)

	_, err := p.Get(context.Background(), "")
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestPeek_AppliesLimit(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	rows := sqlmock.NewRows([]string{"id", "content", "metadata", "embedding", "created_at"}).
		AddRow("id1", "q1", `{}`, "[0.1,0.2,0.3]", time.Now().UTC()).
		AddRow("id2", "q2", `{}`, "[0.4,0.5,0.6]", time.Now().UTC())

	mk.ExpectQuery(regexp.QuoteMeta("FROM memories")).
		WithArgs(memory.DefaultCollection, 2).
		WillReturnRows(rows)

	records, err := p.Peek(context.Background(), memory.WithPeekLimit(2))
	require.NoError(t, err)
	assert.Len(t, records, 2)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	mk.ExpectExec(regexp.QuoteMeta("DELETE FROM memories WHERE collection = $1 AND id = $2")).
		WithArgs(memory.DefaultCollection, "id1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, p.Delete(context.Background(), "id1"))

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestDrop(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	mk.ExpectExec(regexp.QuoteMeta("DELETE FROM memories WHERE collection = $1")).
		WithArgs(memory.DefaultCollection).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, p.Drop(context.Background()))

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestDrop_MissingCollection(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, false)

	err := p.Drop(context.Background())
	assert.ErrorIs(t, err, memory.ErrCollectionNotFound)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	expectCollectionExists(mk, true)

	mk.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM memories WHERE collection = $1")).
		WithArgs(memory.DefaultCollection).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := p.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	assert.NoError(t, mk.ExpectationsWereMet())
}

func TestReset_TruncatesTable(t *testing.T) {
	p, mk, db := newMockMemory(t)
	defer db.Close()

	mk.ExpectExec(regexp.QuoteMeta("TRUNCATE memories")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, p.Reset(context.Background()))

	assert.NoError(t, mk.ExpectationsWereMet())
}
