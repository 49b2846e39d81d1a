// Package mediator routes typed requests to exactly one registered handler.
//
// Handlers are bound once at startup through a Registry. Build refuses to produce a
// Mediator when a request name is bound twice or a required request has no handler,
// so a misconfigured process fails before serving traffic.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"activityhub/internal/core"

	"go.uber.org/zap"
)

// Request is implemented by every request struct. T is the handler's response type.
// Embed Returns[T] to declare it.
type Request[T any] interface {
	RequestName() string
	returns() T
}

// Returns marks a request struct with its response type.
type Returns[T any] struct{}

func (Returns[T]) returns() T {
	var zero T
	return zero
}

var (
	ErrNoHandler        = errors.New("no handler registered")
	ErrRequestMismatch  = errors.New("handler request type mismatch")
	ErrResponseMismatch = errors.New("handler response type mismatch")
)

type handler func(ctx context.Context, req any) (any, error)

// Registry collects handler bindings before the mediator is built.
type Registry struct {
	handlers   map[string]handler
	duplicates []string
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]handler)}
}

// Register binds fn as the handler for request type R.
func Register[R Request[T], T any](reg *Registry, fn func(ctx context.Context, req R) (core.Result[T], error)) {
	var zero R
	name := zero.RequestName()

	if _, exists := reg.handlers[name]; exists {
		reg.duplicates = append(reg.duplicates, name)
		return
	}

	reg.handlers[name] = func(ctx context.Context, req any) (any, error) {
		typed, ok := req.(R)
		if !ok {
			return nil, fmt.Errorf("%w: %s received %T", ErrRequestMismatch, name, req)
		}
		return fn(ctx, typed)
	}
}

// Build validates the registry and returns a ready Mediator.
// required lists the request names that must have a handler.
func (reg *Registry) Build(logger *zap.Logger, required ...string) (*Mediator, error) {
	var problems []string

	if len(reg.duplicates) > 0 {
		problems = append(problems, "duplicate handlers: "+strings.Join(reg.duplicates, ", "))
	}

	var missing []string
	for _, name := range required {
		if _, ok := reg.handlers[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		problems = append(problems, "missing handlers: "+strings.Join(missing, ", "))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("build mediator: %s", strings.Join(problems, "; "))
	}

	handlers := make(map[string]handler, len(reg.handlers))
	for name, h := range reg.handlers {
		handlers[name] = h
	}

	return &Mediator{
		handlers:  handlers,
		validator: NewValidator(),
		logger:    logger.With(zap.String("component", "mediator")),
	}, nil
}

// Mediator dispatches requests. It is immutable after Build and safe for concurrent use.
type Mediator struct {
	handlers  map[string]handler
	validator *Validator
	logger    *zap.Logger
}

// Send validates req, runs its handler and returns the handler's result.
//
// Validation problems come back as *ValidationError and the handler is not called.
// Infrastructure errors from the handler are returned unchanged; there is no retry.
func Send[T any](ctx context.Context, m *Mediator, req Request[T]) (core.Result[T], error) {
	name := req.RequestName()
	start := time.Now()

	h, ok := m.handlers[name]
	if !ok {
		return core.Result[T]{}, fmt.Errorf("%w: %s", ErrNoHandler, name)
	}

	if err := m.validator.Validate(req); err != nil {
		observe(name, outcomeInvalid, start)
		return core.Result[T]{}, err
	}

	out, err := h(ctx, req)
	if err != nil {
		observe(name, outcomeError, start)
		m.logger.Error("request failed",
			zap.String("request", name),
			zap.Error(err))
		return core.Result[T]{}, err
	}

	res, ok := out.(core.Result[T])
	if !ok {
		observe(name, outcomeError, start)
		return core.Result[T]{}, fmt.Errorf("%w: %s returned %T", ErrResponseMismatch, name, out)
	}

	switch {
	case res.IsFailure():
		observe(name, outcomeFailure, start)
	case res.IsEmpty():
		observe(name, outcomeNotFound, start)
	default:
		observe(name, outcomeSuccess, start)
	}
	return res, nil
}

// Names returns the registered request names in sorted order.
func (m *Mediator) Names() []string {
	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
