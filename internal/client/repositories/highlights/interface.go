// Package highlights persists LocalHighlight records in the client's SQLite
// database, one row per record keyed by client_id.
package highlights

import (
	"context"

	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// Repository is the local highlight store. Tombstoned records stay in the
// store until a sync confirms their deletion.
type Repository interface {
	// Upsert inserts or replaces a record by client_id.
	Upsert(ctx context.Context, h highlight.LocalHighlight) error

	// GetByClientID returns one record, tombstoned or not.
	// common.ErrorNotFound when absent.
	GetByClientID(ctx context.Context, clientID string) (highlight.LocalHighlight, error)

	// ListByArticle returns every record for one article, including
	// tombstones, ordered by character_start.
	ListByArticle(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error)

	// ListAll returns every record in the store.
	ListAll(ctx context.Context) ([]highlight.LocalHighlight, error)

	// ListPending returns records awaiting a remote operation
	// (sync_status pending or failed), optionally filtered by article.
	ListPending(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error)

	// DeleteByClientID removes a row outright (tombstone purge after a
	// confirmed remote delete).
	DeleteByClientID(ctx context.Context, clientID string) error

	// ReplaceArticle swaps the article's whole record set for the merge
	// result. Run it on a transactional handle.
	ReplaceArticle(ctx context.Context, articleURL string, hs []highlight.LocalHighlight) error
}
