package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/newsmarks/internal/client/client"
	"github.com/dmitrijs2005/newsmarks/internal/client/repositories/highlights"
	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/dbx"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
)

// HighlightService owns the highlight lifecycle: local-first mutations that
// mark records pending, and the sync cycle that pushes pending work, pulls
// the server snapshot, merges, and persists the result.
type HighlightService interface {
	Add(ctx context.Context, articleURL, articleText string, start, end int, color highlight.Color) (highlight.LocalHighlight, error)
	SetNote(ctx context.Context, clientID, note string) error
	SetColor(ctx context.Context, clientID string, color highlight.Color) error
	Delete(ctx context.Context, clientID string) error

	Get(ctx context.Context, clientID string) (highlight.LocalHighlight, error)
	List(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error)
	ListAll(ctx context.Context) ([]highlight.LocalHighlight, error)
	Render(ctx context.Context, articleURL, articleText, activeKey string) ([]highlight.Segment, error)

	Sync(ctx context.Context, articleURL string) error

	Snapshot(ctx context.Context, articleURL string) ([]byte, error)
	RestoreSnapshot(ctx context.Context, articleURL string, data []byte) error
}

type highlightService struct {
	client client.Client
	repos  *client.Repositories
}

func NewHighlightService(c client.Client, repos *client.Repositories) HighlightService {
	return &highlightService{client: c, repos: repos}
}

// Add creates a local highlight for the half-open span [start, end) of
// articleText and marks it pending creation. Offsets count code points.
func (s *highlightService) Add(ctx context.Context, articleURL, articleText string, start, end int, color highlight.Color) (highlight.LocalHighlight, error) {
	runes := []rune(articleText)
	if start < 0 || end <= start || end > len(runes) {
		return highlight.LocalHighlight{}, common.ErrorInvalidSpan
	}
	if !highlight.ValidColor(color) {
		return highlight.LocalHighlight{}, common.ErrorInvalidColor
	}

	h := highlight.LocalHighlight{
		Highlight: highlight.Highlight{
			ArticleURL:      articleURL,
			HighlightedText: string(runes[start:end]),
			CharacterStart:  start,
			CharacterEnd:    end,
			Color:           color,
		},
		ClientID: highlight.NewClientID(),
	}
	h = highlight.MarkPending(h, highlight.OpCreate)

	if err := s.repos.Highlights.Upsert(ctx, h); err != nil {
		return highlight.LocalHighlight{}, fmt.Errorf("saving error: %w", err)
	}
	return h, nil
}

func (s *highlightService) SetNote(ctx context.Context, clientID, note string) error {
	return s.mutate(ctx, clientID, func(h *highlight.LocalHighlight) {
		h.Note = note
	})
}

func (s *highlightService) SetColor(ctx context.Context, clientID string, color highlight.Color) error {
	if !highlight.ValidColor(color) {
		return common.ErrorInvalidColor
	}
	return s.mutate(ctx, clientID, func(h *highlight.LocalHighlight) {
		h.Color = color
	})
}

// mutate applies fn to a stored record and marks it pending update; a record
// that has never reached the server stays pending create.
func (s *highlightService) mutate(ctx context.Context, clientID string, fn func(*highlight.LocalHighlight)) error {
	h, err := s.repos.Highlights.GetByClientID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("error retrieving highlight: %w", err)
	}
	if h.Deleted {
		return common.ErrorNotFound
	}

	fn(&h)

	op := highlight.OpUpdate
	if h.PendingOp == highlight.OpCreate {
		op = highlight.OpCreate
	}
	h = highlight.MarkPending(h, op)

	if err := s.repos.Highlights.Upsert(ctx, h); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

// Delete tombstones a record and marks it pending deletion. A record the
// server has never seen is purged outright.
func (s *highlightService) Delete(ctx context.Context, clientID string) error {
	h, err := s.repos.Highlights.GetByClientID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("error retrieving highlight: %w", err)
	}

	if h.ServerID == 0 && h.ID == 0 {
		return s.repos.Highlights.DeleteByClientID(ctx, clientID)
	}

	h = highlight.MarkPending(h, highlight.OpDelete)
	if err := s.repos.Highlights.Upsert(ctx, h); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func (s *highlightService) Get(ctx context.Context, clientID string) (highlight.LocalHighlight, error) {
	return s.repos.Highlights.GetByClientID(ctx, clientID)
}

// List returns the article's visible records, hiding tombstones.
func (s *highlightService) List(ctx context.Context, articleURL string) ([]highlight.LocalHighlight, error) {
	all, err := s.repos.Highlights.ListByArticle(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("error retrieving highlights: %w", err)
	}
	return visible(all), nil
}

func (s *highlightService) ListAll(ctx context.Context) ([]highlight.LocalHighlight, error) {
	all, err := s.repos.Highlights.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving highlights: %w", err)
	}
	return visible(all), nil
}

func visible(hs []highlight.LocalHighlight) []highlight.LocalHighlight {
	out := make([]highlight.LocalHighlight, 0, len(hs))
	for _, h := range hs {
		if !h.Deleted {
			out = append(out, h)
		}
	}
	return out
}

// Render produces the article's display segments from the current local
// record set.
func (s *highlightService) Render(ctx context.Context, articleURL, articleText, activeKey string) ([]highlight.Segment, error) {
	hs, err := s.List(ctx, articleURL)
	if err != nil {
		return nil, err
	}
	return highlight.Render(articleText, hs, activeKey), nil
}

// Sync pushes pending work record by record (a failure marks that record
// failed and moves on), then pulls the server snapshot for the article,
// merges it with the local set, and swaps the stored set transactionally.
// With an empty articleURL only the push phase runs, for every article.
func (s *highlightService) Sync(ctx context.Context, articleURL string) error {
	pending, err := s.repos.Highlights.ListPending(ctx, articleURL)
	if err != nil {
		return fmt.Errorf("error retrieving pending highlights: %w", err)
	}

	for _, h := range pending {
		if err := s.pushOne(ctx, h); err != nil {
			return err
		}
	}

	if articleURL == "" {
		return nil
	}

	serverList, err := s.client.ListHighlights(ctx, articleURL)
	if err != nil {
		return fmt.Errorf("error fetching server highlights: %w", err)
	}

	local, err := s.repos.Highlights.ListByArticle(ctx, articleURL)
	if err != nil {
		return fmt.Errorf("error retrieving highlights: %w", err)
	}

	merged := highlight.Merge(articleURL, local, serverList)

	return dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return highlights.NewSQLiteRepository(tx).ReplaceArticle(ctx, articleURL, merged)
	})
}

// pushOne performs a record's outstanding remote operation. Remote errors
// are recorded on the record, never returned; only local storage failures
// abort the sync.
func (s *highlightService) pushOne(ctx context.Context, h highlight.LocalHighlight) error {
	switch h.PendingOp {
	case highlight.OpCreate:
		created, err := s.client.CreateHighlight(ctx, remoteShape(h))
		if err != nil {
			return s.storeFailure(ctx, h, err)
		}
		return s.repos.Highlights.Upsert(ctx, highlight.MarkSynced(h, *created))

	case highlight.OpUpdate:
		id := serverID(h)
		if id == 0 {
			// Never reached the server; an update is really a create.
			created, err := s.client.CreateHighlight(ctx, remoteShape(h))
			if err != nil {
				return s.storeFailure(ctx, h, err)
			}
			return s.repos.Highlights.Upsert(ctx, highlight.MarkSynced(h, *created))
		}
		upd := client.HighlightUpdate{Color: &h.Color, Note: &h.Note}
		updated, err := s.client.UpdateHighlight(ctx, id, upd)
		if err != nil {
			return s.storeFailure(ctx, h, err)
		}
		return s.repos.Highlights.Upsert(ctx, highlight.MarkSynced(h, *updated))

	case highlight.OpDelete:
		id := serverID(h)
		if id != 0 {
			err := s.client.DeleteHighlight(ctx, id)
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return s.storeFailure(ctx, h, err)
			}
		}
		// Confirmed (or never existed upstream): purge the tombstone.
		return s.repos.Highlights.DeleteByClientID(ctx, h.ClientID)

	default:
		return nil
	}
}

func (s *highlightService) storeFailure(ctx context.Context, h highlight.LocalHighlight, cause error) error {
	if err := s.repos.Highlights.Upsert(ctx, highlight.MarkFailed(h, cause)); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	return nil
}

func serverID(h highlight.LocalHighlight) int64 {
	if h.ServerID != 0 {
		return h.ServerID
	}
	return h.ID
}

func remoteShape(h highlight.LocalHighlight) highlight.Highlight {
	out := highlight.ToRemote([]highlight.LocalHighlight{h})
	if len(out) == 0 {
		return h.Highlight
	}
	return out[0]
}

// snapshotDoc is the portable export shape, one JSON document per article.
type snapshotDoc struct {
	Version    int                        `json:"version"`
	ArticleURL string                     `json:"article_url"`
	Highlights []highlight.LocalHighlight `json:"highlights"`
}

const snapshotVersion = 1

// Snapshot exports the article's full local record set, tombstones included.
func (s *highlightService) Snapshot(ctx context.Context, articleURL string) ([]byte, error) {
	hs, err := s.repos.Highlights.ListByArticle(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("error retrieving highlights: %w", err)
	}
	return json.Marshal(snapshotDoc{Version: snapshotVersion, ArticleURL: articleURL, Highlights: hs})
}

// RestoreSnapshot replaces the article's local record set from an export.
// A snapshot with a mismatched version or article is rejected, never
// migrated.
func (s *highlightService) RestoreSnapshot(ctx context.Context, articleURL string, data []byte) error {
	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.Version != snapshotVersion || doc.ArticleURL != articleURL {
		return common.ErrorSnapshotMismatch
	}

	return dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return highlights.NewSQLiteRepository(tx).ReplaceArticle(ctx, articleURL, doc.Highlights)
	})
}
