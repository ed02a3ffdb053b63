// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"

	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/resource"
)

// ArticleAPI reads and deletes articles. Saving goes through a workflow.
type ArticleAPI interface {
	ListArticles(ctx context.Context, p model.Pagination) (model.Page[model.Article], error)
	GetArticle(ctx context.Context, id int64) (*model.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
}

// CategoryAPI reads and deletes categories.
type CategoryAPI interface {
	ListCategories(ctx context.Context, p model.Pagination) (model.Page[model.Category], error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// MessageAPI lists and deletes contact form submissions.
type MessageAPI interface {
	ListContactMessages(ctx context.Context, p model.Pagination) (model.Page[model.ContactMessage], error)
	DeleteContactMessage(ctx context.Context, id int64) error
}

// SubscriberAPI lists and deletes newsletter subscribers.
type SubscriberAPI interface {
	ListSubscribers(ctx context.Context, p model.Pagination) (model.Page[model.Subscriber], error)
	DeleteSubscriber(ctx context.Context, id int64) error
}

// UserAPI manages dashboard accounts.
type UserAPI interface {
	ListUsers(ctx context.Context, p model.Pagination) (model.Page[model.CMSUser], error)
	Signup(ctx context.Context, req model.SignupRequest) error
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

// DashboardAPI is what the dashboard counts come from.
type DashboardAPI interface {
	ListArticles(ctx context.Context, p model.Pagination) (model.Page[model.Article], error)
	ListCategories(ctx context.Context, p model.Pagination) (model.Page[model.Category], error)
	ListContactMessages(ctx context.Context, p model.Pagination) (model.Page[model.ContactMessage], error)
	ListSubscribers(ctx context.Context, p model.Pagination) (model.Page[model.Subscriber], error)
}

// Store constructors. Each request works on its own store so list state
// never leaks between operators.

func articleStore(api ArticleAPI) *resource.Store[model.Article] {
	return resource.Articles(api.ListArticles)
}

func categoryStore(api CategoryAPI) *resource.Store[model.Category] {
	return resource.Categories(api.ListCategories)
}

func messageStore(api MessageAPI) *resource.Store[model.ContactMessage] {
	return resource.ContactMessages(api.ListContactMessages)
}

func subscriberStore(api SubscriberAPI) *resource.Store[model.Subscriber] {
	return resource.Subscribers(api.ListSubscribers)
}

func userStore(api UserAPI) *resource.Store[model.CMSUser] {
	return resource.Users(api.ListUsers)
}

// allCategories is the pagination that fetches every category.
var allCategories = model.Pagination{Page: 1, Limit: model.UnboundedCategoryCap}

// deleteFromPage deletes through s while the list shows page, then refetches
// that page. It returns the page to show next: the same one, or the new last
// page when the deletion emptied it. A failed refetch is logged only; the
// deletion itself succeeded.
func deleteFromPage[T any](ctx context.Context, s *resource.Store[T], page int, op resource.Op) (int, error) {
	s.Select(model.Pagination{Page: page})

	var opErr error
	err := s.Delete(ctx, func(ctx context.Context) error {
		opErr = op(ctx)
		return opErr
	})
	if opErr != nil {
		return page, opErr
	}
	if err != nil {
		slog.WarnContext(ctx, "refetching after delete", "error", err)
		return page, nil
	}
	return s.LastPage(), nil
}
