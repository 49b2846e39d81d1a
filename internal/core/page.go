package core

import (
	"context"
	"fmt"
)

const (
	// MaxPageSize caps the page size a caller can request. Larger values are reduced, not rejected.
	MaxPageSize = 50

	// DefaultPageSize applies when the caller sends no page size.
	DefaultPageSize = 10
)

// Page is a bounded slice of an ordered collection plus count-derived metadata.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"itemsPerPage"`
	TotalCount  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

// Source is the narrow capability pagination needs from a data store.
// Implementations must apply their own filters and ordering; Paginate never sorts.
type Source[T any] interface {
	// Count returns the number of items matching the source's filters.
	Count(ctx context.Context) (int, error)
	// Slice returns up to limit items starting at offset, in source order.
	Slice(ctx context.Context, offset, limit int) ([]T, error)
}

// PagingParams carries the page request as received from a caller.
type PagingParams struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Normalize returns the effective page number and page size.
// Page numbers below 1 become 1; sizes are clamped to (0, MaxPageSize].
func (p PagingParams) Normalize() (pageNumber, pageSize int) {
	pageNumber = p.PageNumber
	if pageNumber <= 0 {
		pageNumber = 1
	}

	pageSize = p.PageSize
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	return pageNumber, pageSize
}

// Paginate counts the source, then reads the requested page.
//
// The count reflects the filters already applied to the source. The source is read
// twice (count, slice) and never mutated.
func Paginate[T any](ctx context.Context, source Source[T], pageNumber, pageSize int) (Page[T], error) {
	pageNumber, pageSize = PagingParams{PageNumber: pageNumber, PageSize: pageSize}.Normalize()

	total, err := source.Count(ctx)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count page source: %w", err)
	}

	page := Page[T]{
		Items:       []T{},
		CurrentPage: pageNumber,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  totalPages(total, pageSize),
	}

	if total == 0 {
		return page, nil
	}

	offset := (pageNumber - 1) * pageSize
	if offset >= total {
		return page, nil
	}

	items, err := source.Slice(ctx, offset, pageSize)
	if err != nil {
		return Page[T]{}, fmt.Errorf("slice page source: %w", err)
	}
	if items != nil {
		page.Items = items
	}

	return page, nil
}

// MapPage projects the items of a page, keeping its metadata.
func MapPage[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Items:       make([]U, 0, len(page.Items)),
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
		TotalCount:  page.TotalCount,
		TotalPages:  page.TotalPages,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// SliceSource adapts an already ordered in-memory slice to Source.
type SliceSource[T any] []T

func (s SliceSource[T]) Count(_ context.Context) (int, error) {
	return len(s), nil
}

func (s SliceSource[T]) Slice(_ context.Context, offset, limit int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	out := make([]T, end-offset)
	copy(out, s[offset:end])
	return out, nil
}
