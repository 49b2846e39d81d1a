package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"activityhub/internal/httputil"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/transport/http/middleware"
)

// Dispatcher sends requests through the mediator and maps their outcome to HTTP.
type Dispatcher struct {
	mediator *mediator.Mediator
	logger   *zap.Logger
	// verbose includes error detail in 500 responses.
	verbose bool
}

func NewDispatcher(m *mediator.Mediator, logger *zap.Logger, verbose bool) *Dispatcher {
	return &Dispatcher{
		mediator: m,
		logger:   logger.With(zap.String("component", "http")),
		verbose:  verbose,
	}
}

// dispatch runs req and writes any non-success outcome. ok reports whether the
// caller still has to write the success response.
//
//	validation error -> 422, failure -> 400, not found -> 404, other errors -> 500
func dispatch[T any](d *Dispatcher, w http.ResponseWriter, r *http.Request, req mediator.Request[T]) (value T, ok bool) {
	res, err := mediator.Send[T](r.Context(), d.mediator, req)
	if err != nil {
		d.writeError(w, r, err)
		return value, false
	}

	switch {
	case res.IsFailure():
		httputil.WriteBadRequest(w, res.Error)
		return value, false
	case res.IsEmpty():
		httputil.WriteNotFound(w, "Not found")
		return value, false
	}
	return res.Value, true
}

func (d *Dispatcher) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *mediator.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteValidation(w, verr.Fields)
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Photo exceeds 10MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	case r.Context().Err() != nil:
		// Client went away; nobody reads the response.
	default:
		d.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		message := "Something went wrong"
		if d.verbose {
			message = err.Error()
		}
		httputil.WriteInternalError(w, message)
	}
}

// actor returns the authenticated actor or writes a 401.
func actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
	}
	return a, ok
}
