package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"activityhub/internal/core"
	"activityhub/internal/httputil"
	"activityhub/internal/model"
	"activityhub/internal/service"
)

type FollowHandler struct {
	*Dispatcher
}

func NewFollowHandler(d *Dispatcher) *FollowHandler {
	return &FollowHandler{Dispatcher: d}
}

// Toggle handles POST /follow/{username}
func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	req := service.FollowToggle{Actor: a, TargetUsername: chi.URLParam(r, "username")}
	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, req); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// List handles GET /follow/{username}?predicate=followers|following
func (h *FollowHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	req := service.ListFollowings{
		Actor:     a,
		Username:  chi.URLParam(r, "username"),
		Predicate: r.URL.Query().Get("predicate"),
	}
	profiles, ok := dispatch[[]model.Profile](h.Dispatcher, w, r, req)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profiles)
}
