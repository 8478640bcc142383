// Package client talks to the remote highlight service over HTTP/JSON and
// owns the client-side database bootstrap.
package client

import (
	"context"

	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// HighlightUpdate is the PATCH payload for a server-side record: only color
// and note are mutable remotely; spans are fixed at creation time.
type HighlightUpdate struct {
	Color *highlight.Color `json:"color,omitempty"`
	Note  *string          `json:"note,omitempty"`
}

// Client is the remote highlight collection, keyed by integer server id.
type Client interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error

	CreateHighlight(ctx context.Context, h highlight.Highlight) (*highlight.Highlight, error)
	ListHighlights(ctx context.Context, articleURL string) ([]highlight.Highlight, error)
	ListAllHighlights(ctx context.Context) ([]highlight.Highlight, error)
	UpdateHighlight(ctx context.Context, id int64, upd HighlightUpdate) (*highlight.Highlight, error)
	DeleteHighlight(ctx context.Context, id int64) error

	Close() error
}
