// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solarhub/solar-admin/internal/model"
)

// listEnvelope covers the list shapes the backend returns: {rows, count}
// and the paginated {totalRecords, totalPages, currentPage, perPage, data}.
type listEnvelope struct {
	Rows         json.RawMessage `json:"rows"`
	Count        *int            `json:"count"`
	Data         json.RawMessage `json:"data"`
	TotalRecords *int            `json:"totalRecords"`
	TotalPages   *int            `json:"totalPages"`
	CurrentPage  *int            `json:"currentPage"`
	PerPage      *int            `json:"perPage"`
}

// decodeList decodes any supported list shape into a Page. Keys names extra
// envelope fields that may hold the items, e.g. "users".
func decodeList[T any](data []byte, p model.Pagination, keys ...string) (model.Page[T], error) {
	page := model.Page[T]{CurrentPage: p.Page, PerPage: p.Limit}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return finishPage(page), nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		page.TotalRecords = len(page.Items)
		return finishPage(page), nil
	}

	var env listEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return page, fmt.Errorf("decode list: %w", err)
	}

	items := env.Rows
	if len(items) == 0 || bytes.Equal(items, []byte("null")) {
		items = env.Data
	}
	if len(items) == 0 || bytes.Equal(items, []byte("null")) {
		var named map[string]json.RawMessage
		if err := json.Unmarshal(data, &named); err == nil {
			for _, k := range keys {
				if raw, ok := named[k]; ok {
					items = raw
					break
				}
			}
		}
	}
	if len(items) > 0 && !bytes.Equal(items, []byte("null")) {
		if err := json.Unmarshal(items, &page.Items); err != nil {
			return page, fmt.Errorf("decode list items: %w", err)
		}
	}

	page.TotalRecords = len(page.Items)
	switch {
	case env.TotalRecords != nil:
		page.TotalRecords = *env.TotalRecords
	case env.Count != nil:
		page.TotalRecords = *env.Count
	}
	if env.TotalPages != nil {
		page.TotalPages = *env.TotalPages
	}
	if env.CurrentPage != nil {
		page.CurrentPage = *env.CurrentPage
	}
	if env.PerPage != nil {
		page.PerPage = *env.PerPage
	}

	return finishPage(page), nil
}

func finishPage[T any](page model.Page[T]) model.Page[T] {
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.CurrentPage < 1 {
		page.CurrentPage = 1
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
		if page.PerPage > 0 && page.TotalRecords > page.PerPage {
			page.TotalPages = (page.TotalRecords + page.PerPage - 1) / page.PerPage
		}
	}
	return page
}

// decodeOne decodes {key: {...}} or a bare object.
func decodeOne[T any](data []byte, key string) (*T, error) {
	var named map[string]json.RawMessage
	if err := json.Unmarshal(data, &named); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	raw, ok := named[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		raw = data
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}
