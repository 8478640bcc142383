package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the /api/v1 route table. Registration, login, refresh,
// and ping are public; the highlight collection requires a valid access
// token.
func (h *Handler) NewRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/users/register", h.registerUser).Methods(http.MethodPost)
	api.HandleFunc("/users/login", h.loginUser).Methods(http.MethodPost)
	api.HandleFunc("/users/refresh", h.refreshToken).Methods(http.MethodPost)
	api.HandleFunc("/ping", h.ping).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(h.authMiddleware)
	authed.HandleFunc("/highlights", h.createHighlight).Methods(http.MethodPost)
	authed.HandleFunc("/highlights", h.listHighlights).Methods(http.MethodGet)
	authed.HandleFunc("/highlights/all", h.listAllHighlights).Methods(http.MethodGet)
	authed.HandleFunc("/highlights/{id:[0-9]+}", h.updateHighlight).Methods(http.MethodPatch)
	authed.HandleFunc("/highlights/{id:[0-9]+}", h.deleteHighlight).Methods(http.MethodDelete)

	return r
}
