// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
	"github.com/solarhub/solar-admin/internal/workflow"
)

// CategoriesHandler handles category management routes.
type CategoriesHandler struct {
	renderer  *render.Renderer
	api       CategoryAPI
	workflows *workflow.Manager
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(renderer *render.Renderer, api CategoryAPI, workflows *workflow.Manager) *CategoriesHandler {
	return &CategoriesHandler{renderer: renderer, api: api, workflows: workflows}
}

// CategoriesListData is the category list page model.
type CategoriesListData struct {
	Categories []model.Category
}

// CategoryFormData is the category form model.
type CategoryFormData struct {
	Action     string
	IsNew      bool
	WorkflowID string
	Primary    model.Lang
	Fields     workflow.Fields
	ErrorField string
}

// List handles GET /admin/categories. Every category is shown on one page.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	store := categoryStore(h.api)

	td := render.TemplateData{Title: i18n.T(lang, "page.categories"), Nav: "categories"}
	if _, err := store.List(ctx, allCategories); err != nil {
		slog.ErrorContext(ctx, "listing categories", "error", err)
		td.Flash = apiclient.MessageOf(err, i18n.T(lang, "msg.error_loading"))
		td.FlashType = render.FlashError
	}

	td.Data = CategoriesListData{Categories: store.Items()}
	h.renderer.Page(w, r, tmplCategories, td)
}

// NewForm handles GET /admin/categories/new.
func (h *CategoriesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	primary := uiLang(r)
	if l, ok := model.ParseLang(r.URL.Query().Get("lang")); ok {
		primary = l
	}
	renderCategoryForm(w, r, h.renderer, http.StatusOK, CategoryFormData{
		Action:  RouteCategories,
		IsNew:   true,
		Primary: primary,
	}, "")
}

// Create handles POST /admin/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, nil, RouteCategories, RouteCategories+RouteSuffixNew)
}

// EditForm handles GET /admin/categories/{id}.
func (h *CategoriesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectCategories)
	if !ok {
		return
	}
	category, ok := requireEntityWithRedirect(w, r, h.renderer, redirectCategories, "category", id,
		func(id int64) (*model.Category, error) { return h.api.GetCategory(r.Context(), id) })
	if !ok {
		return
	}

	primary := uiLang(r)
	if l, ok := model.ParseLang(r.URL.Query().Get("lang")); ok {
		primary = l
	}
	renderCategoryForm(w, r, h.renderer, http.StatusOK, CategoryFormData{
		Action:  categoryURL(id),
		Primary: primary,
		Fields:  categoryFields(category, primary),
	}, "")
}

// Update handles PUT/POST /admin/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectCategories)
	if !ok {
		return
	}
	category, ok := requireEntityWithRedirect(w, r, h.renderer, redirectCategories, "category", id,
		func(id int64) (*model.Category, error) { return h.api.GetCategory(r.Context(), id) })
	if !ok {
		return
	}
	h.submit(w, r, category, categoryURL(id), categoryURL(id))
}

func (h *CategoriesHandler) submit(w http.ResponseWriter, r *http.Request, existing *model.Category, action, formURL string) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, formURL) {
		return
	}

	primary, fields := parseCategoryForm(r)
	form := CategoryFormData{Action: action, IsNew: existing == nil, Primary: primary, Fields: fields}

	owner := ownerOf(r)
	wf := h.workflows.StartCategory(owner, primary, existing)
	if _, err := h.workflows.Save(r.Context(), wf.ID, owner, workflow.SaveInput{Fields: fields}); err != nil {
		h.workflows.Discard(wf.ID, owner)
		status, msg, field := saveFailure(r, err)
		form.ErrorField = field
		renderCategoryForm(w, r, h.renderer, status, form, msg)
		return
	}

	flashSuccess(w, r, h.renderer, workflowURL(wf.ID), i18n.T(lang, "workflow.primary_saved"))
}

// Delete handles DELETE /admin/categories/{id} and its POST form twin.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectCategories)
	if !ok {
		return
	}

	if _, err := deleteFromPage(r.Context(), categoryStore(h.api), 1, func(ctx context.Context) error {
		return h.api.DeleteCategory(ctx, id)
	}); err != nil {
		backendError(w, r, h.renderer, redirectCategories, "failed to delete category", err, "category_id", id)
		return
	}

	slog.InfoContext(r.Context(), "category deleted", "category_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, redirectCategories, i18n.T(lang, "msg.deleted", i18n.T(lang, "entity.category")))
}

func renderCategoryForm(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, form CategoryFormData, flash string) {
	lang := middleware.GetLang(r)
	title := "page.edit_category"
	if form.IsNew {
		title = "page.new_category"
	}
	td := render.TemplateData{
		Title: i18n.T(lang, title),
		Nav:   "categories",
		Data:  form,
	}
	if flash != "" {
		td.Flash = flash
		td.FlashType = render.FlashError
	}
	if err := renderer.RenderStatus(w, r, status, tmplCategoryForm, td); err != nil {
		logAndInternalError(w, r, "rendering category form", "error", err)
	}
}

func parseCategoryForm(r *http.Request) (model.Lang, workflow.Fields) {
	primary, ok := model.ParseLang(r.FormValue("lang"))
	if !ok {
		primary = uiLang(r)
	}
	return primary, workflow.Fields{Name: strings.TrimSpace(r.FormValue("name"))}
}

func categoryFields(c *model.Category, lang model.Lang) workflow.Fields {
	t, _ := c.Translation(lang)
	return workflow.Fields{Name: t.Name}
}

func categoryURL(id int64) string {
	return RouteCategories + "/" + strconv.FormatInt(id, 10)
}
