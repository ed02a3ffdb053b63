// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/sync/errgroup"

	"github.com/solarhub/solar-admin/internal/audit"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
)

// DashboardHandler renders the landing page.
type DashboardHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	api            DashboardAPI
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(renderer *render.Renderer, sm *scs.SessionManager, api DashboardAPI) *DashboardHandler {
	return &DashboardHandler{renderer: renderer, sessionManager: sm, api: api}
}

// DashboardStats holds the totals shown on the dashboard.
type DashboardStats struct {
	Articles    int
	Categories  int
	Subscribers int
	Messages    int
}

// DashboardData is the dashboard page model.
type DashboardData struct {
	Stats      DashboardStats
	Recent     []model.Article
	Categories map[int64]model.Category
	LastSignIn *audit.SignIn
	// Failed is set when a count could not be loaded.
	Failed bool
}

// Dashboard handles GET /admin. The four collections are queried
// concurrently; a failed count shows as zero with a notice.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)

	var (
		data       DashboardData
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := h.api.ListArticles(gctx, model.Pagination{Page: 1, Limit: dashboardRecentMax})
		if err != nil {
			return err
		}
		data.Stats.Articles = page.TotalRecords
		data.Recent = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := h.api.ListCategories(gctx, allCategories)
		if err != nil {
			return err
		}
		data.Stats.Categories = page.TotalRecords
		categories = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := h.api.ListSubscribers(gctx, model.Pagination{Page: 1, Limit: 1})
		if err != nil {
			return err
		}
		data.Stats.Subscribers = page.TotalRecords
		return nil
	})
	g.Go(func() error {
		page, err := h.api.ListContactMessages(gctx, model.Pagination{Page: 1, Limit: 1})
		if err != nil {
			return err
		}
		data.Stats.Messages = page.TotalRecords
		return nil
	})

	td := render.TemplateData{
		Title: i18n.T(lang, "page.dashboard"),
		Nav:   "dashboard",
	}
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "loading dashboard", "error", err)
		data.Failed = true
		td.Flash = i18n.T(lang, "msg.error_loading")
		td.FlashType = render.FlashError
	}

	if len(data.Recent) > dashboardRecentMax {
		data.Recent = data.Recent[:dashboardRecentMax]
	}
	data.Categories = indexCategories(categories)
	if h.sessionManager != nil {
		data.LastSignIn = LastSignIn(ctx, h.sessionManager)
	}

	td.Data = data
	h.renderer.Page(w, r, tmplDashboard, td)
}

func indexCategories(cats []model.Category) map[int64]model.Category {
	out := make(map[int64]model.Category, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out
}
