// Package httpapi exposes the NewsMarks REST API: user registration and
// token management plus CRUD on the per-user highlight collection.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/newsmarks/internal/common"
	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/dmitrijs2005/newsmarks/internal/logging"
	"github.com/dmitrijs2005/newsmarks/internal/server/models"
	"github.com/dmitrijs2005/newsmarks/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is the authentication surface the handlers need.
type UserService interface {
	Register(ctx context.Context, username string, password []byte) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// HighlightService is the highlight-collection surface the handlers need.
type HighlightService interface {
	Create(ctx context.Context, userID string, h highlight.Highlight) (*highlight.Highlight, error)
	ListByArticle(ctx context.Context, userID string, articleURL string) ([]highlight.Highlight, error)
	ListAll(ctx context.Context, userID string) ([]highlight.Highlight, error)
	Update(ctx context.Context, userID string, id int64, color *highlight.Color, note *string) (*highlight.Highlight, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Handler holds the API's dependencies and implements the route handlers.
type Handler struct {
	logger     logging.Logger
	users      UserService
	highlights HighlightService
	secretKey  []byte
}

func NewHandler(logger logging.Logger, users UserService, highlights HighlightService, secretKey []byte) *Handler {
	return &Handler{logger: logger, users: users, highlights: highlights, secretKey: secretKey}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type highlightUpdateRequest struct {
	Color *highlight.Color `json:"color"`
	Note  *string          `json:"note"`
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		h.writeError(r, w, http.StatusBadRequest, "username and password are required")
		return
	}

	if _, err := h.users.Register(r.Context(), creds.Username, []byte(creds.Password)); err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	h.writeJSON(r, w, http.StatusCreated, map[string]string{"status": "OK"})
}

func (h *Handler) loginUser(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.Login(r.Context(), creds.Username, []byte(creds.Password))
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	h.writeJSON(r, w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	h.writeJSON(r, w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r, w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *Handler) createHighlight(w http.ResponseWriter, r *http.Request) {
	var in highlight.Highlight
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.ArticleURL == "" {
		h.writeError(r, w, http.StatusBadRequest, "article_url is required")
		return
	}

	created, err := h.highlights.Create(r.Context(), userIDFromContext(r.Context()), in)
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	h.writeJSON(r, w, http.StatusCreated, created)
}

func (h *Handler) listHighlights(w http.ResponseWriter, r *http.Request) {
	articleURL := r.URL.Query().Get("article_url")
	if articleURL == "" {
		h.writeError(r, w, http.StatusBadRequest, "article_url is required")
		return
	}

	out, err := h.highlights.ListByArticle(r.Context(), userIDFromContext(r.Context()), articleURL)
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	if out == nil {
		out = []highlight.Highlight{}
	}
	h.writeJSON(r, w, http.StatusOK, out)
}

func (h *Handler) listAllHighlights(w http.ResponseWriter, r *http.Request) {
	out, err := h.highlights.ListAll(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	if out == nil {
		out = []highlight.Highlight{}
	}
	h.writeJSON(r, w, http.StatusOK, out)
}

func (h *Handler) updateHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := highlightID(r)
	if err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid highlight id")
		return
	}

	var req highlightUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.highlights.Update(r.Context(), userIDFromContext(r.Context()), id, req.Color, req.Note)
	if err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	h.writeJSON(r, w, http.StatusOK, updated)
}

func (h *Handler) deleteHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := highlightID(r)
	if err != nil {
		h.writeError(r, w, http.StatusBadRequest, "invalid highlight id")
		return
	}

	if err := h.highlights.Delete(r.Context(), userIDFromContext(r.Context()), id); err != nil {
		h.writeServiceError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func highlightID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// writeServiceError maps sentinel errors to HTTP statuses; anything
// unrecognized is logged and reported as a 500 without leaking details.
func (h *Handler) writeServiceError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.writeError(r, w, http.StatusNotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		h.writeError(r, w, http.StatusConflict, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrTokenExpired):
		h.writeError(r, w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		h.writeError(r, w, http.StatusUnauthorized, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		h.writeError(r, w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorInvalidSpan):
		h.writeError(r, w, http.StatusBadRequest, common.ErrorInvalidSpan.Error())
	case errors.Is(err, common.ErrorInvalidColor):
		h.writeError(r, w, http.StatusBadRequest, common.ErrorInvalidColor.Error())
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		h.writeError(r, w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

func (h *Handler) writeJSON(r *http.Request, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error(r.Context(), "error encoding response", "error", err.Error())
	}
}

func (h *Handler) writeError(r *http.Request, w http.ResponseWriter, status int, msg string) {
	h.writeJSON(r, w, status, map[string]string{"error": msg})
}
