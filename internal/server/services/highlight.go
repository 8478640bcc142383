package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/dmitrijs2005/newsmarks/internal/server/cache"
	"github.com/dmitrijs2005/newsmarks/internal/server/repositories/repomanager"
)

// HighlightService implements the per-user highlight collection: validation,
// persistence, and the read-through article cache.
type HighlightService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.HighlightCache
}

// NewHighlightService constructs a HighlightService. cache may be the
// disabled cache; it is never nil-checked beyond its own no-op guards.
func NewHighlightService(db *sql.DB, m repomanager.RepositoryManager, c *cache.HighlightCache) *HighlightService {
	return &HighlightService{db: db, repomanager: m, cache: c}
}

// Create validates and stores a new highlight for the user.
func (s *HighlightService) Create(ctx context.Context, userID string, h highlight.Highlight) (*highlight.Highlight, error) {
	if !h.SpanValid() {
		return nil, common.ErrorInvalidSpan
	}
	if h.Color == "" {
		h.Color = highlight.ColorYellow
	}
	if !highlight.ValidColor(h.Color) {
		return nil, common.ErrorInvalidColor
	}

	repo := s.repomanager.Highlights(s.db)
	created, err := repo.Create(ctx, userID, h)
	if err != nil {
		return nil, fmt.Errorf("error creating highlight: %w", err)
	}
	s.cache.Invalidate(ctx, userID, created.ArticleURL)
	return created, nil
}

// ListByArticle returns the user's highlights for one article, served from
// the cache when fresh.
func (s *HighlightService) ListByArticle(ctx context.Context, userID string, articleURL string) ([]highlight.Highlight, error) {
	if cached, ok := s.cache.Get(ctx, userID, articleURL); ok {
		return cached, nil
	}

	repo := s.repomanager.Highlights(s.db)
	out, err := repo.ListByArticle(ctx, userID, articleURL)
	if err != nil {
		return nil, fmt.Errorf("error listing highlights: %w", err)
	}
	s.cache.Set(ctx, userID, articleURL, out)
	return out, nil
}

// ListAll returns every highlight the user owns, across articles.
func (s *HighlightService) ListAll(ctx context.Context, userID string) ([]highlight.Highlight, error) {
	repo := s.repomanager.Highlights(s.db)
	out, err := repo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing highlights: %w", err)
	}
	return out, nil
}

// Update changes a highlight's color and/or note. A nil field keeps the
// stored value; spans are immutable.
func (s *HighlightService) Update(ctx context.Context, userID string, id int64, color *highlight.Color, note *string) (*highlight.Highlight, error) {
	repo := s.repomanager.Highlights(s.db)

	current, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	newColor := current.Color
	if color != nil {
		if !highlight.ValidColor(*color) {
			return nil, common.ErrorInvalidColor
		}
		newColor = *color
	}
	newNote := current.Note
	if note != nil {
		newNote = *note
	}

	updated, err := repo.Update(ctx, userID, id, newColor, newNote)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userID, updated.ArticleURL)
	return updated, nil
}

// Delete removes a highlight. Deleting an absent record yields
// common.ErrorNotFound.
func (s *HighlightService) Delete(ctx context.Context, userID string, id int64) error {
	repo := s.repomanager.Highlights(s.db)

	current, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID, current.ArticleURL)
	return nil
}
