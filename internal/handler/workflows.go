// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/render"
	"github.com/solarhub/solar-admin/internal/workflow"
)

// WorkflowsHandler drives the bilingual edit after the primary language was
// first submitted: confirmation, status polling, going back and re-saving.
type WorkflowsHandler struct {
	renderer   *render.Renderer
	workflows  *workflow.Manager
	categories CategoryAPI
	cfg        ArticlesConfig
}

// NewWorkflowsHandler creates a new WorkflowsHandler.
func NewWorkflowsHandler(renderer *render.Renderer, workflows *workflow.Manager, categories CategoryAPI, cfg ArticlesConfig) *WorkflowsHandler {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10 << 20
	}
	return &WorkflowsHandler{renderer: renderer, workflows: workflows, categories: categories, cfg: cfg}
}

// ConfirmData is the confirmation page model.
type ConfirmData struct {
	Snapshot   workflow.Snapshot
	IsArticle  bool
	ListURL    string
	StatusURL  string
	ConfirmURL string
	BackURL    string
	CancelURL  string
}

// lookup returns the workflow named by {id} when it belongs to the user.
func (h *WorkflowsHandler) lookup(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	wf, err := h.workflows.Get(chi.URLParam(r, "id"), ownerOf(r))
	if err != nil {
		flashError(w, r, h.renderer, redirectAdmin, i18n.T(middleware.GetLang(r), "workflow.not_found"))
		return nil, false
	}
	return wf, true
}

// Show handles GET /admin/workflows/{id}. Editing workflows get their form
// back, later states the confirmation screen.
func (h *WorkflowsHandler) Show(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap := wf.Snapshot()
	switch wf.State() {
	case workflow.Editing:
		h.renderEdit(w, r, wf, snap.PrimaryText, wf.Meta(), http.StatusOK, snap.Error, "")
	case workflow.Committed:
		http.Redirect(w, r, listURL(wf.Kind), http.StatusSeeOther)
	default:
		h.renderConfirm(w, r, wf, snap)
	}
}

// Status handles GET /admin/workflows/{id}/status for the confirmation
// screen to poll.
func (h *WorkflowsHandler) Status(w http.ResponseWriter, r *http.Request) {
	wf, err := h.workflows.Get(chi.URLParam(r, "id"), ownerOf(r))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, i18n.T(middleware.GetLang(r), "workflow.not_found"))
		return
	}
	writeJSON(w, http.StatusOK, wf.Snapshot())
}

// Save handles POST /admin/workflows/{id}: the primary language form of a
// workflow that went back to editing.
func (h *WorkflowsHandler) Save(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)

	var in workflow.SaveInput
	switch wf.Kind {
	case workflow.KindArticle:
		if err := parseUploadForm(w, r, h.cfg.UploadMaxBytes); err != nil {
			flashError(w, r, h.renderer, workflowURL(wf.ID), i18n.T(lang, "msg.invalid_form"))
			return
		}
		_, in.Fields, in.Meta = parseArticleForm(r)
		cover, err := readCover(r, h.cfg.CoverMaxWidth)
		if err != nil {
			slog.WarnContext(r.Context(), "rejecting cover image", "error", err)
			h.renderEdit(w, r, wf, in.Fields, in.Meta, http.StatusUnprocessableEntity, i18n.T(lang, "msg.cover_invalid"), "cover")
			return
		}
		in.Cover = cover
	default:
		if !parseFormOrRedirect(w, r, h.renderer, workflowURL(wf.ID)) {
			return
		}
		_, in.Fields = parseCategoryForm(r)
	}

	if _, err := h.workflows.Save(r.Context(), wf.ID, ownerOf(r), in); err != nil {
		if errors.Is(err, workflow.ErrInvalidState) {
			flashError(w, r, h.renderer, workflowURL(wf.ID), i18n.T(lang, "workflow.invalid_state"))
			return
		}
		status, msg, field := saveFailure(r, err)
		h.renderEdit(w, r, wf, in.Fields, in.Meta, status, msg, field)
		return
	}

	flashSuccess(w, r, h.renderer, workflowURL(wf.ID), i18n.T(lang, "workflow.primary_saved"))
}

// Confirm handles POST /admin/workflows/{id}/confirm. Both languages are
// saved as submitted.
func (h *WorkflowsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}
	lang := middleware.GetLang(r)
	back := workflowURL(wf.ID)

	if !parseFormOrRedirect(w, r, h.renderer, back) {
		return
	}
	primary := fieldsFromForm(r, "primary_", wf.Kind)
	secondary := fieldsFromForm(r, "secondary_", wf.Kind)

	_, err := h.workflows.Confirm(r.Context(), wf.ID, ownerOf(r), primary, secondary)
	if err != nil {
		var ve *workflow.ValidationError
		switch {
		case errors.As(err, &ve):
			flashError(w, r, h.renderer, back, i18n.T(lang, "msg.required", i18n.T(lang, "label."+ve.Field)))
		case errors.Is(err, workflow.ErrInvalidState):
			flashError(w, r, h.renderer, back, i18n.T(lang, "workflow.invalid_state"))
		default:
			slog.ErrorContext(r.Context(), "confirming translation", "workflow", wf.ID, "error", err)
			flashError(w, r, h.renderer, back, apiclient.MessageOf(err, i18n.T(lang, "msg.backend_error")))
		}
		return
	}

	h.workflows.Discard(wf.ID, ownerOf(r))
	slog.InfoContext(r.Context(), "translation confirmed", "workflow", wf.ID, "kind", wf.Kind, "user_id", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, listURL(wf.Kind), i18n.T(lang, "msg.saved", i18n.T(lang, "entity."+string(wf.Kind))))
}

// Back handles POST /admin/workflows/{id}/back.
func (h *WorkflowsHandler) Back(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if _, err := h.workflows.Back(wf.ID, ownerOf(r)); err != nil {
		flashError(w, r, h.renderer, workflowURL(wf.ID), i18n.T(middleware.GetLang(r), "workflow.invalid_state"))
		return
	}
	http.Redirect(w, r, workflowURL(wf.ID), http.StatusSeeOther)
}

// Cancel handles POST /admin/workflows/{id}/delete. What the backend already
// holds stays.
func (h *WorkflowsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.workflows.Discard(wf.ID, ownerOf(r))
	http.Redirect(w, r, listURL(wf.Kind), http.StatusSeeOther)
}

func (h *WorkflowsHandler) renderConfirm(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, snap workflow.Snapshot) {
	lang := middleware.GetLang(r)
	base := workflowURL(wf.ID)

	td := render.TemplateData{
		Title: i18n.T(lang, "page.confirm_translation"),
		Nav:   navOf(wf.Kind),
		Data: ConfirmData{
			Snapshot:   snap,
			IsArticle:  wf.Kind == workflow.KindArticle,
			ListURL:    listURL(wf.Kind),
			StatusURL:  base + RouteSuffixStatus,
			ConfirmURL: base + RouteSuffixConfirm,
			BackURL:    base + RouteSuffixBack,
			CancelURL:  base + RouteSuffixDelete,
		},
	}
	if snap.Error != "" {
		td.Flash = snap.Error
		td.FlashType = render.FlashError
	}
	h.renderer.Page(w, r, tmplConfirm, td)
}

// renderEdit shows the primary form of a workflow in Editing.
func (h *WorkflowsHandler) renderEdit(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, fields workflow.Fields, meta workflow.ArticleMeta, status int, flash, errorField string) {
	snap := wf.Snapshot()
	if wf.Kind == workflow.KindArticle {
		renderArticleFormError(w, r, h.renderer, h.categories, status, ArticleFormData{
			Action:     workflowURL(wf.ID),
			IsNew:      snap.RecordID == 0,
			WorkflowID: wf.ID,
			Primary:    wf.Primary,
			Fields:     fields,
			Meta:       meta,
			ErrorField: errorField,
		}, flash)
		return
	}
	renderCategoryForm(w, r, h.renderer, status, CategoryFormData{
		Action:     workflowURL(wf.ID),
		IsNew:      snap.RecordID == 0,
		WorkflowID: wf.ID,
		Primary:    wf.Primary,
		Fields:     fields,
		ErrorField: errorField,
	}, flash)
}

// fieldsFromForm reads the text inputs named prefix+field for kind.
func fieldsFromForm(r *http.Request, prefix string, kind workflow.Kind) workflow.Fields {
	if kind == workflow.KindCategory {
		return workflow.Fields{Name: strings.TrimSpace(r.FormValue(prefix + "name"))}
	}
	return workflow.Fields{
		Title:   strings.TrimSpace(r.FormValue(prefix + "title")),
		Excerpt: strings.TrimSpace(r.FormValue(prefix + "excerpt")),
		Content: r.FormValue(prefix + "content"),
		Author:  strings.TrimSpace(r.FormValue(prefix + "author")),
	}
}

func listURL(kind workflow.Kind) string {
	if kind == workflow.KindCategory {
		return RouteCategories
	}
	return RouteArticles
}

func navOf(kind workflow.Kind) string {
	if kind == workflow.KindCategory {
		return "categories"
	}
	return "articles"
}
