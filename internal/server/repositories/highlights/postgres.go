package highlights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/dbx"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `id, article_url, highlighted_text, character_start, character_end, color, note, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, userID string, h highlight.Highlight) (*highlight.Highlight, error) {
	query := `
		INSERT INTO highlights (user_id, article_url, highlighted_text, character_start, character_end, color, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + columns

	row := r.db.QueryRowContext(ctx, query,
		userID, h.ArticleURL, h.HighlightedText, h.CharacterStart, h.CharacterEnd, h.Color, h.Note)

	return scanHighlight(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string, id int64) (*highlight.Highlight, error) {
	query := `SELECT ` + columns + ` FROM highlights WHERE user_id = $1 AND id = $2`
	return scanHighlight(r.db.QueryRowContext(ctx, query, userID, id))
}

func (r *PostgresRepository) ListByArticle(ctx context.Context, userID string, articleURL string) ([]highlight.Highlight, error) {
	query := `
		SELECT ` + columns + `
		FROM highlights
		WHERE user_id = $1 AND article_url = $2
		ORDER BY character_start, id
	`
	return r.list(ctx, query, userID, articleURL)
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]highlight.Highlight, error) {
	query := `
		SELECT ` + columns + `
		FROM highlights
		WHERE user_id = $1
		ORDER BY article_url, character_start, id
	`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, id int64, color highlight.Color, note string) (*highlight.Highlight, error) {
	query := `
		UPDATE highlights
		SET color = $1, note = $2, updated_at = now()
		WHERE user_id = $3 AND id = $4
		RETURNING ` + columns

	return scanHighlight(r.db.QueryRowContext(ctx, query, color, note, userID, id))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string, id int64) error {
	query := `DELETE FROM highlights WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]highlight.Highlight, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []highlight.Highlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// scanner is the shared surface of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHighlight(s scanner) (*highlight.Highlight, error) {
	var (
		h         highlight.Highlight
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := s.Scan(&h.ID, &h.ArticleURL, &h.HighlightedText, &h.CharacterStart, &h.CharacterEnd,
		&h.Color, &h.Note, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		h.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		h.UpdatedAt = &t
	}
	return &h, nil
}
