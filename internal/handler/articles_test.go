// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/workflow"
)

type articlesFixture struct {
	env       *testEnv
	api       *fakeAPI
	workflows *workflow.Manager
}

func newArticlesFixture(t *testing.T) *articlesFixture {
	t.Helper()
	env := newTestEnv(t, testAdmin)
	api := newFakeAPI()
	api.categories = []model.Category{category(3, "News", "أخبار")}
	m := env.newManager(api, prefixTranslator{})

	articles := NewArticlesHandler(env.renderer, api, api, m, ArticlesConfig{CoverMaxWidth: 800})
	flows := NewWorkflowsHandler(env.renderer, m, api, ArticlesConfig{CoverMaxWidth: 800})

	r := env.router
	r.Get(RouteArticles, articles.List)
	r.Get(RouteArticles+RouteSuffixNew, articles.NewForm)
	r.Post(RouteArticles, articles.Create)
	r.Get(RouteArticlesID, articles.EditForm)
	r.Post(RouteArticlesID, articles.Update)
	r.Post(RouteArticlesID+RouteSuffixDelete, articles.Delete)
	r.Get(RouteWorkflowsID, flows.Show)
	r.Post(RouteWorkflowsID, flows.Save)
	r.Get(RouteWorkflowsID+RouteSuffixStatus, flows.Status)
	r.Post(RouteWorkflowsID+RouteSuffixConfirm, flows.Confirm)
	r.Post(RouteWorkflowsID+RouteSuffixBack, flows.Back)
	r.Post(RouteWorkflowsID+RouteSuffixDelete, flows.Cancel)

	return &articlesFixture{env: env, api: api, workflows: m}
}

func articleForm(lang, title, content string, categoryID string) url.Values {
	return url.Values{
		"lang":         {lang},
		"title":        {title},
		"excerpt":      {""},
		"content":      {content},
		"author":       {"Desk"},
		"category_id":  {categoryID},
		"reading_time": {"4"},
	}
}

func TestArticlesList(t *testing.T) {
	f := newArticlesFixture(t)
	for i := int64(1); i <= 25; i++ {
		f.api.articles = append(f.api.articles, article(i, 3, "Story "+string(rune('A'+i-1)), ""))
	}

	rec := f.env.do(http.MethodGet, RouteArticles, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Story A")
	assert.Contains(t, body, "Story T")
	assert.NotContains(t, body, "Story U", "page 1 holds 20 articles")
	assert.Contains(t, body, "News")
	assert.Contains(t, body, `href="/admin/articles?page=2"`)

	rec = f.env.do(http.MethodGet, RouteArticles+"?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Story U")
	assert.NotContains(t, rec.Body.String(), "Story T")
}

func TestArticlesListShowsBackendMessage(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.failList["articles"] = &apiclient.APIError{Status: http.StatusInternalServerError, Message: "database offline"}

	rec := f.env.do(http.MethodGet, RouteArticles, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "database offline")
}

func TestArticlesNewFormLanguage(t *testing.T) {
	f := newArticlesFixture(t)

	rec := f.env.do(http.MethodGet, RouteArticles+RouteSuffixNew+"?lang=ar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="ar" selected>`)
	assert.Contains(t, body, `<div dir="rtl">`)
	assert.Contains(t, body, "News")
}

func TestArticleCreateConfirmFlow(t *testing.T) {
	f := newArticlesFixture(t)

	rec := f.env.do(http.MethodPost, RouteArticles, articleForm("en", "Solar farm opens", "It is open.", "3"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	id := workflowIDFrom(t, rec.Header().Get("Location"))
	assert.Equal(t, "Saved. Review the translation below.", f.env.flash())

	waitIdle(t, f.workflows)

	// The primary language was created alone, then the suggestion persisted.
	calls := f.api.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "create article", calls[0])
	assert.Equal(t, "update article 101", calls[1])
	first := f.api.saved[0]
	_, hasAR := first.Translation(model.LangAR)
	assert.False(t, hasAR)
	assert.Equal(t, int64(3), first.CategoryID)
	assert.Equal(t, 4, first.ReadingTime)

	rec = f.env.do(http.MethodGet, workflowURL(id)+RouteSuffixStatus, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap workflow.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.Translating)
	assert.Equal(t, "[ar] Solar farm opens", snap.Suggestion.Title)
	assert.Equal(t, int64(101), snap.RecordID)

	rec = f.env.do(http.MethodGet, workflowURL(id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[ar] Solar farm opens")

	rec = f.env.do(http.MethodPost, workflowURL(id)+RouteSuffixConfirm, url.Values{
		"primary_title":     {"Solar farm opens"},
		"primary_content":   {"It is open."},
		"secondary_title":   {"افتتاح مزرعة شمسية"},
		"secondary_content": {"إنها مفتوحة."},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles, rec.Header().Get("Location"))
	assert.Equal(t, "Article saved in both languages.", f.env.flash())

	final := f.api.saved[len(f.api.saved)-1]
	ar, ok := final.Translation(model.LangAR)
	require.True(t, ok)
	assert.Equal(t, "افتتاح مزرعة شمسية", ar.Title)
	en, _ := final.Translation(model.LangEN)
	assert.Equal(t, "Solar farm opens", en.Title)

	assert.Equal(t, 0, f.workflows.Len(), "a confirmed workflow is discarded")
}

func TestArticleCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"missing title", articleForm("en", "", "body", "3"), "Title is required."},
		{"missing content", articleForm("en", "Title", "  ", "3"), "Content is required."},
		{"missing category", articleForm("en", "Title", "body", ""), "Category is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newArticlesFixture(t)

			rec := f.env.do(http.MethodPost, RouteArticles, tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.field)
			assert.Empty(t, f.api.Calls())
			assert.Equal(t, 0, f.workflows.Len())
		})
	}
}

func TestArticleCreateBackendFailureKeepsForm(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.saveErr = &apiclient.APIError{Status: http.StatusBadRequest, Message: "slug taken"}

	rec := f.env.do(http.MethodPost, RouteArticles, articleForm("en", "Kept title", "Kept body", "3"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "slug taken")
	assert.Contains(t, body, `value="Kept title"`)
	assert.Equal(t, 0, f.workflows.Len())
}

func TestArticleEditForm(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.articles = []model.Article{article(7, 3, "Sunrise", "شروق")}

	rec := f.env.do(http.MethodGet, articleURL(7)+"?lang=ar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="شروق"`)
	assert.Contains(t, body, `value="2026-03-01"`)
	assert.NotContains(t, body, `value="Sunrise"`)
}

func TestArticleEditFormNotFound(t *testing.T) {
	f := newArticlesFixture(t)

	rec := f.env.do(http.MethodGet, articleURL(99), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles, rec.Header().Get("Location"))
	assert.Equal(t, "The requested item was not found.", f.env.flash())

	rec = f.env.do(http.MethodGet, RouteArticles+"/abc", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles, rec.Header().Get("Location"))
}

func TestArticleUpdateKeepsOtherLanguage(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.articles = []model.Article{article(7, 3, "Sunrise", "شروق")}

	rec := f.env.do(http.MethodPost, articleURL(7), articleForm("en", "Sunrise again", "New body", "3"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	workflowIDFrom(t, rec.Header().Get("Location"))

	waitIdle(t, f.workflows)

	calls := f.api.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "update article 7", calls[0])
	first := f.api.saved[0]
	ar, ok := first.Translation(model.LangAR)
	require.True(t, ok, "the saved Arabic text is sent with the primary save")
	assert.Equal(t, "شروق", ar.Title)
}

func TestArticleDelete(t *testing.T) {
	f := newArticlesFixture(t)
	for i := int64(1); i <= 21; i++ {
		f.api.articles = append(f.api.articles, article(i, 3, "A", ""))
	}

	// Deleting the only article of page 2 lands on page 1.
	rec := f.env.do(http.MethodPost, articleURL(21)+RouteSuffixDelete, url.Values{"page": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles, rec.Header().Get("Location"))
	assert.Equal(t, "Article deleted.", f.env.flash())
	assert.Equal(t, []string{"delete article 21"}, f.api.Calls())

	rec = f.env.do(http.MethodPost, articleURL(5)+RouteSuffixDelete, url.Values{"page": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles, rec.Header().Get("Location"))
}

func TestArticleDeleteFailureKeepsPage(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.articles = []model.Article{article(1, 3, "A", "")}
	f.api.deleteErr = errors.New("boom")

	rec := f.env.do(http.MethodPost, articleURL(1)+RouteSuffixDelete, url.Values{"page": {"3"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteArticles+"?page=3", rec.Header().Get("Location"))
	assert.Equal(t, "The server could not complete the request.", f.env.flash())
}

func TestArticleDeleteRejectedTokenGoesToLogin(t *testing.T) {
	f := newArticlesFixture(t)
	f.api.articles = []model.Article{article(1, 3, "A", "")}
	f.api.deleteErr = &apiclient.APIError{Status: http.StatusUnauthorized, Message: "jwt expired"}

	rec := f.env.do(http.MethodPost, articleURL(1)+RouteSuffixDelete, url.Values{"page": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteLogin, rec.Header().Get("Location"))
	assert.Equal(t, "Your session has expired. Please sign in again.", f.env.flash())
}
