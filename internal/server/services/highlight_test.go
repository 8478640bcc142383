package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/dmitrijs2005/newsmarks/internal/server/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHighlightService(rm *fakeRepoManager) *HighlightService {
	return NewHighlightService(nil, rm, cache.New("", "", 0))
}

func sample() highlight.Highlight {
	return highlight.Highlight{
		ArticleURL:      "https://example.com/article",
		HighlightedText: "quick",
		CharacterStart:  4,
		CharacterEnd:    9,
		Color:           highlight.ColorYellow,
	}
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)

	created, err := s.Create(context.Background(), "u1", sample())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.CreatedAt)
}

func TestCreate_DefaultsColor(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)

	h := sample()
	h.Color = ""
	created, err := s.Create(context.Background(), "u1", h)
	require.NoError(t, err)
	assert.Equal(t, highlight.ColorYellow, created.Color)
}

func TestCreate_Validation(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	h := sample()
	h.CharacterEnd = h.CharacterStart
	_, err := s.Create(ctx, "u1", h)
	require.ErrorIs(t, err, common.ErrorInvalidSpan)

	h = sample()
	h.Color = "mauve"
	_, err = s.Create(ctx, "u1", h)
	require.ErrorIs(t, err, common.ErrorInvalidColor)
}

func TestUpdate_PartialFields(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sample())
	require.NoError(t, err)

	note := "important"
	updated, err := s.Update(ctx, "u1", created.ID, nil, &note)
	require.NoError(t, err)
	assert.Equal(t, "important", updated.Note)
	assert.Equal(t, highlight.ColorYellow, updated.Color) // untouched
	require.NotNil(t, updated.UpdatedAt)

	green := highlight.ColorGreen
	updated, err = s.Update(ctx, "u1", created.ID, &green, nil)
	require.NoError(t, err)
	assert.Equal(t, highlight.ColorGreen, updated.Color)
	assert.Equal(t, "important", updated.Note) // untouched
}

func TestUpdate_InvalidColorRejected(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sample())
	require.NoError(t, err)

	bad := highlight.Color("mauve")
	_, err = s.Update(ctx, "u1", created.ID, &bad, nil)
	require.ErrorIs(t, err, common.ErrorInvalidColor)
}

func TestOwnershipScoping(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sample())
	require.NoError(t, err)

	// another user sees nothing
	_, err = s.Update(ctx, "u2", created.ID, nil, nil)
	require.ErrorIs(t, err, common.ErrorNotFound)
	err = s.Delete(ctx, "u2", created.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	list, err := s.ListByArticle(ctx, "u2", created.ArticleURL)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDelete(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sample())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "u1", created.ID))
	require.ErrorIs(t, s.Delete(ctx, "u1", created.ID), common.ErrorNotFound)
}

func TestListByArticleAndListAll(t *testing.T) {
	rm := newFakeRepoManager()
	s := newHighlightService(rm)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", sample())
	require.NoError(t, err)

	other := sample()
	other.ArticleURL = "https://example.com/other"
	_, err = s.Create(ctx, "u1", other)
	require.NoError(t, err)

	list, err := s.ListByArticle(ctx, "u1", "https://example.com/article")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	all, err := s.ListAll(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
