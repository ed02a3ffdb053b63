// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"

	"github.com/solarhub/solar-admin/internal/model"
)

// AdminPagination holds pagination data for admin templates.
type AdminPagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Pages       []AdminPaginationPage
	BaseURL     string
}

// AdminPaginationPage represents a single page link in admin pagination.
type AdminPaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// pageWindow is the number of page links shown around the current page.
const pageWindow = 5

// BuildAdminPagination creates pagination data for admin templates from a
// backend page. The backend's page count wins; it is derived from the record
// count when the backend sent none.
func BuildAdminPagination[T any](page model.Page[T], p model.Pagination, baseURL string) AdminPagination {
	perPage := p.Limit
	if perPage < 1 {
		perPage = 1
	}
	current := p.Page
	if current < 1 {
		current = 1
	}

	totalPages := page.TotalPages
	if totalPages < 1 {
		totalPages = (page.TotalRecords + perPage - 1) / perPage
	}
	if totalPages < 1 {
		totalPages = 1
	}

	pagination := AdminPagination{
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalItems:  page.TotalRecords,
		PerPage:     perPage,
		HasPrev:     current > 1,
		HasNext:     current < totalPages,
		PrevPage:    current - 1,
		NextPage:    current + 1,
		BaseURL:     baseURL,
	}

	start := current - pageWindow/2
	end := current + pageWindow/2
	if start < 1 {
		start = 1
		end = pageWindow
	}
	if end > totalPages {
		end = totalPages
		start = max(end-pageWindow+1, 1)
	}

	if start > 1 {
		pagination.Pages = append(pagination.Pages, AdminPaginationPage{Number: 1, URL: pagination.PageURL(1)})
		if start > 2 {
			pagination.Pages = append(pagination.Pages, AdminPaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pagination.Pages = append(pagination.Pages, AdminPaginationPage{
			Number:    i,
			URL:       pagination.PageURL(i),
			IsCurrent: i == current,
		})
	}
	if end < totalPages {
		if end < totalPages-1 {
			pagination.Pages = append(pagination.Pages, AdminPaginationPage{IsEllipsis: true})
		}
		pagination.Pages = append(pagination.Pages, AdminPaginationPage{Number: totalPages, URL: pagination.PageURL(totalPages)})
	}

	return pagination
}

// PageURL returns the URL for a specific page number.
func (p AdminPagination) PageURL(page int) string {
	return fmt.Sprintf("%s?page=%d", p.BaseURL, page)
}

// PrevURL returns the URL for the previous page.
func (p AdminPagination) PrevURL() string {
	return p.PageURL(p.PrevPage)
}

// NextURL returns the URL for the next page.
func (p AdminPagination) NextURL() string {
	return p.PageURL(p.NextPage)
}

// ShouldShow returns true if pagination should be displayed (more than 1 page).
func (p AdminPagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// PageRange returns a description of the current page range.
func (p AdminPagination) PageRange() string {
	if p.TotalItems == 0 {
		return "0"
	}
	start := (p.CurrentPage-1)*p.PerPage + 1
	end := min(p.CurrentPage*p.PerPage, p.TotalItems)
	return fmt.Sprintf("%d-%d", start, end)
}
