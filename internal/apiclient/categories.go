// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/solarhub/solar-admin/internal/model"
)

// ListCategories returns one page of categories. A zero limit fetches all.
func (c *Client) ListCategories(ctx context.Context, p model.Pagination) (model.Page[model.Category], error) {
	p = p.Normalize(model.UnboundedCategoryCap)
	respBody, err := c.send(ctx, http.MethodGet, "categories", requestOptions{query: paginationQuery(p)})
	if err != nil {
		return model.Page[model.Category]{}, err
	}
	return decodeList[model.Category](respBody, p, "categories")
}

// GetCategory returns a single category.
func (c *Client) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	respBody, err := c.send(ctx, http.MethodGet, categoryPath(id), requestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Category](respBody, "category")
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, cat *model.Category) (*model.Category, error) {
	return c.saveCategory(ctx, http.MethodPost, "categories", cat)
}

// UpdateCategory replaces a category's translations.
func (c *Client) UpdateCategory(ctx context.Context, id int64, cat *model.Category) (*model.Category, error) {
	return c.saveCategory(ctx, http.MethodPut, categoryPath(id), cat)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.deleteResource(ctx, categoryPath(id))
}

func categoryPath(id int64) string {
	return "categories/" + strconv.FormatInt(id, 10)
}

type categoryPayload struct {
	Translations []model.CategoryTranslation `json:"translations"`
}

func (c *Client) saveCategory(ctx context.Context, method, target string, cat *model.Category) (*model.Category, error) {
	jsonBody, err := json.Marshal(categoryPayload{Translations: cat.Translations})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	respBody, err := c.send(ctx, method, target, requestOptions{
		body:        bytes.NewReader(jsonBody),
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return cat, nil
	}
	saved, err := decodeOne[model.Category](respBody, "category")
	if err != nil {
		return nil, err
	}
	if saved.ID == 0 && len(saved.Translations) == 0 {
		return cat, nil
	}
	return saved, nil
}
