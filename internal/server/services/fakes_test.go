package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/dbx"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/dmitrijs2005/newsmarks/internal/server/models"
	"github.com/dmitrijs2005/newsmarks/internal/server/repositories/highlights"
	"github.com/dmitrijs2005/newsmarks/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/newsmarks/internal/server/repositories/users"
)

// fakeRepoManager vends in-memory repositories. The DBTX argument is ignored;
// services under test never touch a real database.
type fakeRepoManager struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	marks  *fakeHighlightRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:  &fakeUserRepo{byName: map[string]*models.User{}},
		tokens: &fakeTokenRepo{byToken: map[string]*models.RefreshToken{}},
		marks:  &fakeHighlightRepo{nextID: 1, byID: map[int64]highlight.Highlight{}, owner: map[int64]string{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeRepoManager) Highlights(dbx.DBTX) highlights.Repository       { return m.marks }

type fakeUserRepo struct {
	mu     sync.Mutex
	byName map[string]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	user.ID = "user-" + user.UserName
	r.byName[user.UserName] = user
	return user, nil
}

func (r *fakeUserRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	byToken map[string]*models.RefreshToken
}

func (r *fakeTokenRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *fakeTokenRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, token)
	return nil
}

type fakeHighlightRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]highlight.Highlight
	owner  map[int64]string
}

func (r *fakeHighlightRepo) Create(ctx context.Context, userID string, h highlight.Highlight) (*highlight.Highlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	h.CreatedAt = &now
	r.byID[h.ID] = h
	r.owner[h.ID] = userID
	return &h, nil
}

func (r *fakeHighlightRepo) GetByID(ctx context.Context, userID string, id int64) (*highlight.Highlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok || r.owner[id] != userID {
		return nil, common.ErrorNotFound
	}
	return &h, nil
}

func (r *fakeHighlightRepo) ListByArticle(ctx context.Context, userID string, articleURL string) ([]highlight.Highlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []highlight.Highlight
	for id, h := range r.byID {
		if r.owner[id] == userID && h.ArticleURL == articleURL {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHighlightRepo) ListAll(ctx context.Context, userID string) ([]highlight.Highlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []highlight.Highlight
	for id, h := range r.byID {
		if r.owner[id] == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHighlightRepo) Update(ctx context.Context, userID string, id int64, color highlight.Color, note string) (*highlight.Highlight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok || r.owner[id] != userID {
		return nil, common.ErrorNotFound
	}
	h.Color = color
	h.Note = note
	now := time.Now().UTC()
	h.UpdatedAt = &now
	r.byID[id] = h
	return &h, nil
}

func (r *fakeHighlightRepo) Delete(ctx context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok || r.owner[id] != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	delete(r.owner, id)
	return nil
}
