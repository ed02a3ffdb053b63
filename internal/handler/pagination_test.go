// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solarhub/solar-admin/internal/model"
)

func pageNumbers(p AdminPagination) []int {
	var out []int
	for _, pg := range p.Pages {
		if pg.IsEllipsis {
			out = append(out, 0)
			continue
		}
		out = append(out, pg.Number)
	}
	return out
}

func TestBuildAdminPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      model.Page[int]
		p         model.Pagination
		wantPages []int
		wantTotal int
		hasPrev   bool
		hasNext   bool
	}{
		{
			name:      "single page",
			page:      model.Page[int]{TotalRecords: 3, TotalPages: 1},
			p:         model.Pagination{Page: 1, Limit: 10},
			wantPages: []int{1},
			wantTotal: 1,
		},
		{
			name:      "empty list still has one page",
			page:      model.Page[int]{},
			p:         model.Pagination{Page: 1, Limit: 10},
			wantPages: []int{1},
			wantTotal: 1,
		},
		{
			name:      "derived from record count",
			page:      model.Page[int]{TotalRecords: 45},
			p:         model.Pagination{Page: 2, Limit: 20},
			wantPages: []int{1, 2, 3},
			wantTotal: 3,
			hasPrev:   true,
			hasNext:   true,
		},
		{
			name:      "window in the middle",
			page:      model.Page[int]{TotalRecords: 200, TotalPages: 20},
			p:         model.Pagination{Page: 10, Limit: 10},
			wantPages: []int{1, 0, 8, 9, 10, 11, 12, 0, 20},
			wantTotal: 20,
			hasPrev:   true,
			hasNext:   true,
		},
		{
			name:      "window at the end",
			page:      model.Page[int]{TotalRecords: 70, TotalPages: 7},
			p:         model.Pagination{Page: 7, Limit: 10},
			wantPages: []int{1, 0, 3, 4, 5, 6, 7},
			wantTotal: 7,
			hasPrev:   true,
		},
		{
			name:      "backend page count wins",
			page:      model.Page[int]{TotalRecords: 5, TotalPages: 2},
			p:         model.Pagination{Page: 1, Limit: 10},
			wantPages: []int{1, 2},
			wantTotal: 2,
			hasNext:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAdminPagination(tt.page, tt.p, RouteArticles)
			assert.Equal(t, tt.wantPages, pageNumbers(got))
			assert.Equal(t, tt.wantTotal, got.TotalPages)
			assert.Equal(t, tt.hasPrev, got.HasPrev)
			assert.Equal(t, tt.hasNext, got.HasNext)
		})
	}
}

func TestAdminPaginationURLs(t *testing.T) {
	p := BuildAdminPagination(model.Page[int]{TotalRecords: 95}, model.Pagination{Page: 2, Limit: 20}, RouteMessages)

	assert.Equal(t, "/admin/messages?page=1", p.PrevURL())
	assert.Equal(t, "/admin/messages?page=3", p.NextURL())
	assert.Equal(t, "21-40", p.PageRange())
	assert.True(t, p.ShouldShow())

	empty := BuildAdminPagination(model.Page[int]{}, model.Pagination{Page: 1, Limit: 20}, RouteMessages)
	assert.Equal(t, "0", empty.PageRange())
	assert.False(t, empty.ShouldShow())
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, RouteUsers, pageURL(RouteUsers, 0))
	assert.Equal(t, RouteUsers, pageURL(RouteUsers, 1))
	assert.Equal(t, RouteUsers+"?page=4", pageURL(RouteUsers, 4))
}
