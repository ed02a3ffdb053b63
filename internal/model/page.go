// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Default page sizes per resource.
const (
	DefaultArticleLimit  = 20
	DefaultMessageLimit  = 10
	DefaultListLimit     = 50
	UnboundedCategoryCap = 20000000
)

// Pagination selects one page of a list. Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize fills in a page of 1 and the given default limit where unset.
func (p Pagination) Normalize(defaultLimit int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	return p
}

// Offset returns the zero-based row offset of the page.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page is one page of a backend list.
type Page[T any] struct {
	Items        []T
	TotalRecords int
	TotalPages   int
	CurrentPage  int
	PerPage      int
}

// Len returns the number of items on the page.
func (p Page[T]) Len() int {
	return len(p.Items)
}
