// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/imaging"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
	"github.com/solarhub/solar-admin/internal/workflow"
)

// ArticlesConfig holds the upload limits of the article form.
type ArticlesConfig struct {
	CoverMaxWidth  int
	UploadMaxBytes int64
}

// ArticlesHandler handles article management routes.
type ArticlesHandler struct {
	renderer   *render.Renderer
	api        ArticleAPI
	categories CategoryAPI
	workflows  *workflow.Manager
	cfg        ArticlesConfig
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(renderer *render.Renderer, api ArticleAPI, categories CategoryAPI, workflows *workflow.Manager, cfg ArticlesConfig) *ArticlesHandler {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10 << 20
	}
	return &ArticlesHandler{
		renderer:   renderer,
		api:        api,
		categories: categories,
		workflows:  workflows,
		cfg:        cfg,
	}
}

// ArticlesListData is the article list page model.
type ArticlesListData struct {
	Articles   []model.Article
	Categories map[int64]model.Category
	Pagination AdminPagination
}

// ArticleFormData is the article form model. It serves new articles, edits
// and workflows returned to editing.
type ArticleFormData struct {
	Action     string
	IsNew      bool
	WorkflowID string
	Primary    model.Lang
	Fields     workflow.Fields
	Meta       workflow.ArticleMeta
	CoverImage string
	Categories []model.Category
	// ErrorField names the input that failed validation.
	ErrorField string
}

// List handles GET /admin/articles.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	store := articleStore(h.api)

	var (
		categories []model.Category
		listErr    error
	)
	var g errgroup.Group
	g.Go(func() error {
		_, listErr = store.List(ctx, model.Pagination{Page: pageParam(r), Limit: model.DefaultArticleLimit})
		return nil
	})
	g.Go(func() error {
		categories = loadCategories(ctx, h.categories)
		return nil
	})
	_ = g.Wait()

	td := render.TemplateData{Title: i18n.T(lang, "page.articles"), Nav: "articles"}
	if listErr != nil {
		slog.ErrorContext(ctx, "listing articles", "error", listErr)
		td.Flash = apiclient.MessageOf(listErr, i18n.T(lang, "msg.error_loading"))
		td.FlashType = render.FlashError
	}

	page := store.Page()
	td.Data = ArticlesListData{
		Articles:   page.Items,
		Categories: indexCategories(categories),
		Pagination: BuildAdminPagination(page, store.Pagination(), RouteArticles),
	}
	h.renderer.Page(w, r, tmplArticles, td)
}

// NewForm handles GET /admin/articles/new.
func (h *ArticlesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	primary := uiLang(r)
	if l, ok := model.ParseLang(r.URL.Query().Get("lang")); ok {
		primary = l
	}
	renderArticleForm(w, r, h.renderer, h.categories, http.StatusOK, ArticleFormData{
		Action:  RouteArticles,
		IsNew:   true,
		Primary: primary,
	})
}

// Create handles POST /admin/articles: it starts a workflow and saves the
// primary language.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, nil, RouteArticles, RouteArticles+RouteSuffixNew)
}

// EditForm handles GET /admin/articles/{id}. ?lang= picks the language
// edited first; it defaults to the UI language.
func (h *ArticlesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectArticles)
	if !ok {
		return
	}
	article, ok := requireEntityWithRedirect(w, r, h.renderer, redirectArticles, "article", id,
		func(id int64) (*model.Article, error) { return h.api.GetArticle(r.Context(), id) })
	if !ok {
		return
	}

	primary := uiLang(r)
	if l, ok := model.ParseLang(r.URL.Query().Get("lang")); ok {
		primary = l
	}
	renderArticleForm(w, r, h.renderer, h.categories, http.StatusOK, ArticleFormData{
		Action:     articleURL(id),
		Primary:    primary,
		Fields:     articleFields(article, primary),
		Meta:       articleMeta(article),
		CoverImage: article.CoverImage,
	})
}

// Update handles PUT/POST /admin/articles/{id}. The current article is
// fetched again so the secondary translation the backend holds is kept.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectArticles)
	if !ok {
		return
	}
	article, ok := requireEntityWithRedirect(w, r, h.renderer, redirectArticles, "article", id,
		func(id int64) (*model.Article, error) { return h.api.GetArticle(r.Context(), id) })
	if !ok {
		return
	}
	h.submit(w, r, article, articleURL(id), articleURL(id))
}

func (h *ArticlesHandler) submit(w http.ResponseWriter, r *http.Request, existing *model.Article, action, formURL string) {
	lang := middleware.GetLang(r)
	if err := parseUploadForm(w, r, h.cfg.UploadMaxBytes); err != nil {
		slog.WarnContext(r.Context(), "parsing article form", "error", err)
		flashError(w, r, h.renderer, formURL, i18n.T(lang, "msg.invalid_form"))
		return
	}

	primary, fields, meta := parseArticleForm(r)
	form := ArticleFormData{
		Action:  action,
		IsNew:   existing == nil,
		Primary: primary,
		Fields:  fields,
		Meta:    meta,
	}
	if existing != nil {
		form.CoverImage = existing.CoverImage
	}

	cover, err := readCover(r, h.cfg.CoverMaxWidth)
	if err != nil {
		slog.WarnContext(r.Context(), "rejecting cover image", "error", err)
		form.ErrorField = "cover"
		renderArticleFormError(w, r, h.renderer, h.categories, http.StatusUnprocessableEntity, form, i18n.T(lang, "msg.cover_invalid"))
		return
	}

	owner := ownerOf(r)
	wf := h.workflows.StartArticle(owner, primary, existing)
	_, err = h.workflows.Save(r.Context(), wf.ID, owner, workflow.SaveInput{Fields: fields, Meta: meta, Cover: cover})
	if err != nil {
		h.workflows.Discard(wf.ID, owner)
		status, msg, field := saveFailure(r, err)
		form.ErrorField = field
		renderArticleFormError(w, r, h.renderer, h.categories, status, form, msg)
		return
	}

	flashSuccess(w, r, h.renderer, workflowURL(wf.ID), i18n.T(lang, "workflow.primary_saved"))
}

// Delete handles DELETE /admin/articles/{id} and its POST form twin. The
// list page the request came from is refetched.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectArticles) {
		return
	}
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectArticles)
	if !ok {
		return
	}

	page := formPage(r)
	next, err := deleteFromPage(r.Context(), articleStore(h.api), page, func(ctx context.Context) error {
		return h.api.DeleteArticle(ctx, id)
	})
	if err != nil {
		backendError(w, r, h.renderer, pageURL(RouteArticles, page), "failed to delete article", err, "article_id", id)
		return
	}

	slog.InfoContext(r.Context(), "article deleted", "article_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, pageURL(RouteArticles, next), i18n.T(lang, "msg.deleted", i18n.T(lang, "entity.article")))
}

// renderArticleForm loads the category choices and renders the form.
func renderArticleForm(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, categories CategoryAPI, status int, form ArticleFormData) {
	renderArticleFormError(w, r, renderer, categories, status, form, "")
}

func renderArticleFormError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, categories CategoryAPI, status int, form ArticleFormData, flash string) {
	lang := middleware.GetLang(r)
	form.Categories = loadCategories(r.Context(), categories)

	title := "page.edit_article"
	if form.IsNew {
		title = "page.new_article"
	}
	td := render.TemplateData{
		Title: i18n.T(lang, title),
		Nav:   "articles",
		Data:  form,
	}
	if flash != "" {
		td.Flash = flash
		td.FlashType = render.FlashError
	}
	if err := renderer.RenderStatus(w, r, status, tmplArticleForm, td); err != nil {
		logAndInternalError(w, r, "rendering article form", "error", err)
	}
}

// loadCategories returns every category, or none when the backend fails.
func loadCategories(ctx context.Context, api CategoryAPI) []model.Category {
	if api == nil {
		return nil
	}
	store := categoryStore(api)
	page, err := store.List(ctx, allCategories)
	if err != nil {
		slog.WarnContext(ctx, "loading categories", "error", err)
		return nil
	}
	return page.Items
}

// saveFailure maps a workflow save error to a status, a message and the
// offending field.
func saveFailure(r *http.Request, err error) (int, string, string) {
	lang := middleware.GetLang(r)

	var ve *workflow.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, i18n.T(lang, "msg.required", i18n.T(lang, "label."+ve.Field)), ve.Field
	}
	if errors.Is(err, workflow.ErrInvalidState) {
		return http.StatusConflict, i18n.T(lang, "workflow.invalid_state"), ""
	}
	slog.ErrorContext(r.Context(), "saving primary language", "error", err)
	return http.StatusBadGateway, apiclient.MessageOf(err, i18n.T(lang, "msg.backend_error")), ""
}

// parseUploadForm parses a multipart form within limit, or a plain form.
func parseUploadForm(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	err := r.ParseMultipartForm(limit)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// parseArticleForm reads the primary language and the article inputs.
func parseArticleForm(r *http.Request) (model.Lang, workflow.Fields, workflow.ArticleMeta) {
	primary, ok := model.ParseLang(r.FormValue("lang"))
	if !ok {
		primary = uiLang(r)
	}

	fields := workflow.Fields{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Excerpt: strings.TrimSpace(r.FormValue("excerpt")),
		Content: r.FormValue("content"),
		Author:  strings.TrimSpace(r.FormValue("author")),
	}

	categoryID, _ := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	readingTime, _ := strconv.Atoi(r.FormValue("reading_time"))
	meta := workflow.ArticleMeta{
		CategoryID:    categoryID,
		VideoURL:      strings.TrimSpace(r.FormValue("video_url")),
		PublishedDate: strings.TrimSpace(r.FormValue("published_date")),
		ReadingTime:   max(readingTime, 0),
	}
	return primary, fields, meta
}

// readCover returns the prepared cover upload, or nil when no file was sent.
func readCover(r *http.Request, maxWidth int) (*apiclient.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("cover")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cover: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading cover: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	cover, err := imaging.PrepareCover(data, header.Filename, maxWidth)
	if err != nil {
		return nil, err
	}
	return cover.Upload, nil
}

func articleFields(a *model.Article, lang model.Lang) workflow.Fields {
	t, _ := a.Translation(lang)
	return workflow.Fields{Title: t.Title, Excerpt: t.Excerpt, Content: t.Content, Author: t.Author}
}

func articleMeta(a *model.Article) workflow.ArticleMeta {
	return workflow.ArticleMeta{
		CategoryID:    a.CategoryID,
		VideoURL:      a.VideoURL,
		PublishedDate: a.PublishedDate,
		ReadingTime:   a.ReadingTime,
	}
}

func articleURL(id int64) string {
	return RouteArticles + "/" + strconv.FormatInt(id, 10)
}

func workflowURL(id string) string {
	return RouteWorkflows + "/" + id
}
