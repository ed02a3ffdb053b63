// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package resource keeps the list state of a backend collection: the last
// page fetched, the pagination that produced it, a loading flag and the last
// error. Mutations go to the backend and then refetch the same page.
package resource

import (
	"context"
	"sync"

	"github.com/solarhub/solar-admin/internal/model"
)

// Lister fetches one page of a collection.
type Lister[T any] func(ctx context.Context, p model.Pagination) (model.Page[T], error)

// Op is a single backend mutation.
type Op func(ctx context.Context) error

// Store holds the list state for one collection.
type Store[T any] struct {
	mu           sync.Mutex
	list         Lister[T]
	defaultLimit int
	page         model.Page[T]
	pagination   model.Pagination
	loading      bool
	err          error
}

// NewStore creates a store. defaultLimit applies when a pagination carries
// no limit.
func NewStore[T any](list Lister[T], defaultLimit int) *Store[T] {
	return &Store[T]{
		list:         list,
		defaultLimit: defaultLimit,
		pagination:   model.Pagination{Page: 1, Limit: defaultLimit},
		page:         model.Page[T]{Items: []T{}},
	}
}

// List replaces the local state with the server's page for p and remembers
// p. On failure the previous items are kept and the error is recorded.
func (s *Store[T]) List(ctx context.Context, p model.Pagination) (model.Page[T], error) {
	p = p.Normalize(s.defaultLimit)

	s.mu.Lock()
	s.loading = true
	s.pagination = p
	s.mu.Unlock()

	page, err := s.list(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = err
	if err != nil {
		return s.page, err
	}
	s.page = page
	return page, nil
}

// Select sets the pagination the next Refresh or mutation refetches,
// without fetching.
func (s *Store[T]) Select(p model.Pagination) {
	s.mu.Lock()
	s.pagination = p.Normalize(s.defaultLimit)
	s.mu.Unlock()
}

// Refresh re-runs List with the last used pagination.
func (s *Store[T]) Refresh(ctx context.Context) (model.Page[T], error) {
	return s.List(ctx, s.Pagination())
}

// Create runs op and refetches on success.
func (s *Store[T]) Create(ctx context.Context, op Op) error {
	return s.mutate(ctx, op)
}

// Update runs op and refetches on success.
func (s *Store[T]) Update(ctx context.Context, op Op) error {
	return s.mutate(ctx, op)
}

// Delete runs op and refetches on success.
func (s *Store[T]) Delete(ctx context.Context, op Op) error {
	return s.mutate(ctx, op)
}

func (s *Store[T]) mutate(ctx context.Context, op Op) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	if err := op(ctx); err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err
		s.mu.Unlock()
		return err
	}

	_, err := s.Refresh(ctx)
	return err
}

// Page returns the last fetched page.
func (s *Store[T]) Page() model.Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Items returns the items of the last fetched page.
func (s *Store[T]) Items() []T {
	return s.Page().Items
}

// Pagination returns the pagination of the last List call.
func (s *Store[T]) Pagination() model.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Loading reports whether a call is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error of the last call, or nil.
func (s *Store[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastPage returns the highest page that still has items after a mutation
// shrank the collection, or the current page when it is still in range.
func (s *Store[T]) LastPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.pagination.Page
	if s.page.TotalPages > 0 && cur > s.page.TotalPages {
		return s.page.TotalPages
	}
	if cur < 1 {
		return 1
	}
	return cur
}
