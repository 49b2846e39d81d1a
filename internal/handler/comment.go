package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"activityhub/internal/httputil"
	"activityhub/internal/model"
	"activityhub/internal/realtime"
	"activityhub/internal/service"
)

const sseHeartbeatInterval = 25 * time.Second

type CommentHandler struct {
	*Dispatcher
	broadcaster realtime.Broadcaster
}

func NewCommentHandler(d *Dispatcher, broadcaster realtime.Broadcaster) *CommentHandler {
	return &CommentHandler{Dispatcher: d, broadcaster: broadcaster}
}

// List handles GET /activities/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	comments, ok := dispatch[[]model.CommentDto](h.Dispatcher, w, r, service.ListComments{Actor: a, ActivityID: id})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Create handles POST /activities/{id}/comments.
// The stored comment is broadcast to every stream open on the activity.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	var req service.CreateComment
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = a
	req.ActivityID = id

	comment, ok := dispatch[model.CommentDto](h.Dispatcher, w, r, req)
	if !ok {
		return
	}

	// Broadcast failures are logged only; the comment is already stored.
	if err := h.broadcaster.Broadcast(r.Context(), comment); err != nil {
		h.logger.Warn("failed to broadcast comment",
			zap.String("comment_id", comment.ID.String()),
			zap.Error(err))
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Stream handles GET /activities/{id}/comments/stream as server-sent events.
// Each new comment is one "comment" event whose data is the CommentDto JSON.
func (h *CommentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteInternalError(w, "Streaming unsupported")
		return
	}

	// 404 before switching to the event stream.
	if _, ok := dispatch[[]model.CommentDto](h.Dispatcher, w, r, service.ListComments{Actor: a, ActivityID: id}); !ok {
		return
	}

	ctx := r.Context()
	sub, err := h.broadcaster.Subscribe(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case comment, open := <-sub.Comments():
			if !open {
				return
			}
			data, err := json.Marshal(comment)
			if err != nil {
				h.logger.Warn("failed to marshal comment event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: comment\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
