package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"activityhub/internal/core"
	"activityhub/internal/httputil"
	"activityhub/internal/model"
	"activityhub/internal/service"
)

type ProfileHandler struct {
	*Dispatcher
}

func NewProfileHandler(d *Dispatcher) *ProfileHandler {
	return &ProfileHandler{Dispatcher: d}
}

// Details handles GET /profiles/{username}
func (h *ProfileHandler) Details(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	profile, ok := dispatch[model.Profile](h.Dispatcher, w, r, service.ProfileDetails{
		Actor:    a,
		Username: chi.URLParam(r, "username"),
	})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Edit handles PUT /profiles for the current user.
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req service.EditProfile
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = a

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, req); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Activities handles GET /profiles/{username}/activities?predicate=past|hosting
func (h *ProfileHandler) Activities(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	activities, ok := dispatch[[]model.UserActivityDto](h.Dispatcher, w, r, service.ListUserActivities{
		Actor:     a,
		Username:  chi.URLParam(r, "username"),
		Predicate: r.URL.Query().Get("predicate"),
	})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activities)
}
