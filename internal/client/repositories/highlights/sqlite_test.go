package highlights

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/dbx"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE highlights (
  client_id        TEXT PRIMARY KEY,
  server_id        INTEGER NOT NULL DEFAULT 0,
  article_url      TEXT NOT NULL,
  highlighted_text TEXT NOT NULL,
  character_start  INTEGER NOT NULL,
  character_end    INTEGER NOT NULL,
  color            TEXT NOT NULL DEFAULT 'yellow',
  note             TEXT NOT NULL DEFAULT '',
  created_at       TEXT NOT NULL DEFAULT '',
  updated_at       TEXT NOT NULL DEFAULT '',
  sync_status      TEXT NOT NULL,
  pending_op       TEXT NOT NULL DEFAULT '',
  last_error       TEXT NOT NULL DEFAULT '',
  local_updated_at TEXT NOT NULL,
  deleted          INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func sample(clientID, url string, start, end int) highlight.LocalHighlight {
	return highlight.LocalHighlight{
		Highlight: highlight.Highlight{
			ArticleURL:      url,
			HighlightedText: "quoted text",
			CharacterStart:  start,
			CharacterEnd:    end,
			Color:           highlight.ColorYellow,
		},
		ClientID:       clientID,
		SyncStatus:     highlight.StatusPending,
		PendingOp:      highlight.OpCreate,
		LocalUpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	h := sample("c1", "https://example.com/a", 0, 5)
	require.NoError(t, r.Upsert(ctx, h))

	got, err := r.GetByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	// update through the same client_id
	h.ServerID = 42
	h.SyncStatus = highlight.StatusSynced
	h.PendingOp = highlight.OpNone
	h.Note = "now with a note"
	created := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	h.CreatedAt = &created
	require.NoError(t, r.Upsert(ctx, h))

	got, err = r.GetByClientID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestGetByClientID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByClientID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByArticle_OrderedIncludesTombstones(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	late := sample("c-late", "https://example.com/a", 30, 35)
	early := sample("c-early", "https://example.com/a", 2, 6)
	tomb := sample("c-tomb", "https://example.com/a", 10, 14)
	tomb.Deleted = true
	tomb.PendingOp = highlight.OpDelete
	other := sample("c-other", "https://example.com/b", 0, 3)

	for _, h := range []highlight.LocalHighlight{late, early, tomb, other} {
		require.NoError(t, r.Upsert(ctx, h))
	}

	got, err := r.ListByArticle(ctx, "https://example.com/a")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c-early", got[0].ClientID)
	assert.Equal(t, "c-tomb", got[1].ClientID)
	assert.True(t, got[1].Deleted)
	assert.Equal(t, "c-late", got[2].ClientID)
}

func TestListPending_FiltersByStatusAndArticle(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	pending := sample("c-pending", "https://example.com/a", 0, 5)
	failed := sample("c-failed", "https://example.com/a", 10, 15)
	failed.SyncStatus = highlight.StatusFailed
	failed.LastError = "boom"
	synced := sample("c-synced", "https://example.com/a", 20, 25)
	synced.SyncStatus = highlight.StatusSynced
	synced.PendingOp = highlight.OpNone
	elsewhere := sample("c-elsewhere", "https://example.com/b", 0, 5)

	for _, h := range []highlight.LocalHighlight{pending, failed, synced, elsewhere} {
		require.NoError(t, r.Upsert(ctx, h))
	}

	got, err := r.ListPending(ctx, "https://example.com/a")
	require.NoError(t, err)
	require.Len(t, got, 2)

	all, err := r.ListPending(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDeleteByClientID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sample("c1", "https://example.com/a", 0, 5)))
	require.NoError(t, r.DeleteByClientID(ctx, "c1"))

	_, err := r.GetByClientID(ctx, "c1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReplaceArticle_SwapsWholeSet(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	require.NoError(t, r.Upsert(ctx, sample("c-old", "https://example.com/a", 0, 5)))
	require.NoError(t, r.Upsert(ctx, sample("c-keep", "https://example.com/b", 0, 5)))

	merged := []highlight.LocalHighlight{
		sample("c-new1", "https://example.com/a", 1, 4),
		sample("c-new2", "https://example.com/a", 6, 9),
	}

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).ReplaceArticle(ctx, "https://example.com/a", merged)
	})
	require.NoError(t, err)

	got, err := r.ListByArticle(ctx, "https://example.com/a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c-new1", got[0].ClientID)

	other, err := r.ListByArticle(ctx, "https://example.com/b")
	require.NoError(t, err)
	require.Len(t, other, 1)
}
