package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"activityhub/internal/core"
	"activityhub/internal/httputil"
	"activityhub/internal/model"
	"activityhub/internal/service"
)

type ActivityHandler struct {
	*Dispatcher
}

func NewActivityHandler(d *Dispatcher) *ActivityHandler {
	return &ActivityHandler{Dispatcher: d}
}

// List handles GET /activities
// Items go in the body, page metadata in the Pagination header.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := service.ListActivities{
		Actor:   a,
		IsGoing: queryBool(q.Get("isGoing")),
		IsHost:  queryBool(q.Get("isHost")),
		Paging: core.PagingParams{
			PageNumber: queryInt(q.Get("pageNumber")),
			PageSize:   queryInt(q.Get("pageSize")),
		},
	}
	if raw := q.Get("startDate"); raw != "" {
		startDate, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteBadRequest(w, "startDate must be an RFC 3339 timestamp")
			return
		}
		req.StartDate = startDate
	}

	page, ok := dispatch[core.Page[model.ActivityDto]](h.Dispatcher, w, r, req)
	if !ok {
		return
	}

	httputil.SetPagination(w, httputil.PaginationHeader{
		CurrentPage:  page.CurrentPage,
		ItemsPerPage: page.PageSize,
		TotalItems:   page.TotalCount,
		TotalPages:   page.TotalPages,
	})
	httputil.WriteJSON(w, http.StatusOK, page.Items)
}

// Details handles GET /activities/{id}
func (h *ActivityHandler) Details(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	dto, ok := dispatch[model.ActivityDto](h.Dispatcher, w, r, service.ActivityDetails{Actor: a, ID: id})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dto)
}

// Create handles POST /activities
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}

	var req service.CreateActivity
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = a

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, req); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Edit handles PUT /activities/{id}. Host only.
func (h *ActivityHandler) Edit(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	var req service.EditActivity
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = a
	req.ID = id

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, req); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /activities/{id}. Host only.
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, service.DeleteActivity{Actor: a, ID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Attend handles POST /activities/{id}/attend
func (h *ActivityHandler) Attend(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	if _, ok := dispatch[core.Unit](h.Dispatcher, w, r, service.UpdateAttendance{Actor: a, ID: id}); !ok {
		return
	}
	w.WriteHeader(http.StatusOK)
}

func activityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid activity ID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a JSON body of at most 1MB into dst or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

func queryBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

// queryInt returns 0 for missing or malformed values; paging treats 0 as the default.
func queryInt(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}
