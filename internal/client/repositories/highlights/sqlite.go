package highlights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/dbx"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `client_id, server_id, article_url, highlighted_text,
	character_start, character_end, color, note, created_at, updated_at,
	sync_status, pending_op, last_error, local_updated_at, deleted`

// Upsert inserts or replaces a record by client_id.
func (r *SQLiteRepository) Upsert(ctx context.Context, h highlight.LocalHighlight) error {
	query := `INSERT INTO highlights (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			server_id = excluded.server_id,
			article_url = excluded.article_url,
			highlighted_text = excluded.highlighted_text,
			character_start = excluded.character_start,
			character_end = excluded.character_end,
			color = excluded.color,
			note = excluded.note,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status,
			pending_op = excluded.pending_op,
			last_error = excluded.last_error,
			local_updated_at = excluded.local_updated_at,
			deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		h.ClientID, h.ServerID, h.ArticleURL, h.HighlightedText,
		h.CharacterStart, h.CharacterEnd, string(h.Color), h.Note,
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt),
		string(h.SyncStatus), string(h.PendingOp), h.LastError,
		h.LocalUpdatedAt.UTC().Format(time.RFC3339Nano), boolToInt(h.Deleted))
	if err != nil {
		return fmt.Errorf("failed to upsert highlight: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByClientID(ctx context.Context, clientID string) (highlight.LocalHighlight, error) {
	query := `SELECT ` + columns + ` FROM highlights WHERE client_id = ?`
	row := r.db.QueryRowContext(ctx, query, clientID)

	h, err := scanHighlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return highlight.LocalHighlight{}, common.ErrorNotFound
	}
	if err != nil {
		return highlight.LocalHighlight{}, fmt.Errorf("failed to select highlight: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) ListByArticle(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error) {
	query := `SELECT ` + columns + ` FROM highlights
		WHERE article_url = ? ORDER BY character_start, client_id`
	return r.list(ctx, query, articleURL)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]highlight.LocalHighlight, error) {
	query := `SELECT ` + columns + ` FROM highlights ORDER BY article_url, character_start`
	return r.list(ctx, query)
}

func (r *SQLiteRepository) ListPending(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error) {
	query := `SELECT ` + columns + ` FROM highlights
		WHERE sync_status IN ('pending', 'failed')`
	args := []any{}
	if articleURL != "" {
		query += ` AND article_url = ?`
		args = append(args, articleURL)
	}
	query += ` ORDER BY local_updated_at`
	return r.list(ctx, query, args...)
}

func (r *SQLiteRepository) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete highlight: %w", err)
	}
	return nil
}

// ReplaceArticle deletes the article's rows and inserts the given set.
// Callers are expected to run this inside dbx.WithTx.
func (r *SQLiteRepository) ReplaceArticle(ctx context.Context, articleURL string, hs []highlight.LocalHighlight) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE article_url = ?`, articleURL); err != nil {
		return fmt.Errorf("failed to clear article highlights: %w", err)
	}
	for _, h := range hs {
		if err := r.Upsert(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]highlight.LocalHighlight, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select highlights: %w", err)
	}
	defer rows.Close()

	var result []highlight.LocalHighlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHighlight(s scanner) (highlight.LocalHighlight, error) {
	var h highlight.LocalHighlight
	var color, status, op, createdAt, updatedAt, localUpdatedAt string
	var deleted int

	err := s.Scan(&h.ClientID, &h.ServerID, &h.ArticleURL, &h.HighlightedText,
		&h.CharacterStart, &h.CharacterEnd, &color, &h.Note, &createdAt, &updatedAt,
		&status, &op, &h.LastError, &localUpdatedAt, &deleted)
	if err != nil {
		return highlight.LocalHighlight{}, err
	}

	h.Color = highlight.Color(color)
	h.SyncStatus = highlight.SyncStatus(status)
	h.PendingOp = highlight.PendingOp(op)
	h.Deleted = deleted != 0
	h.CreatedAt = parseTime(createdAt)
	h.UpdatedAt = parseTime(updatedAt)
	if t := parseTime(localUpdatedAt); t != nil {
		h.LocalUpdatedAt = *t
	}
	return h, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
