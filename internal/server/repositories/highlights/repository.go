// Package highlights declares the server-side repository contract for the
// per-user highlight collection.
package highlights

import (
	"context"

	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// Repository defines storage operations for a user's highlights. Every call
// is scoped by userID; a record owned by someone else behaves as absent.
type Repository interface {
	Create(ctx context.Context, userID string, h highlight.Highlight) (*highlight.Highlight, error)
	GetByID(ctx context.Context, userID string, id int64) (*highlight.Highlight, error)
	ListByArticle(ctx context.Context, userID string, articleURL string) ([]highlight.Highlight, error)
	ListAll(ctx context.Context, userID string) ([]highlight.Highlight, error)

	// Update changes the two remotely mutable fields, color and note, and
	// bumps updated_at. Spans are fixed at creation time.
	Update(ctx context.Context, userID string, id int64, color highlight.Color, note string) (*highlight.Highlight, error)

	Delete(ctx context.Context, userID string, id int64) error
}
