// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the admin html/templates with the per-request
// language, direction, user, CSRF field and flash message.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"filippo.io/csrf/gorilla"
	"github.com/alexedwards/scs/v2"

	"github.com/solarhub/solar-admin/internal/auth"
	"github.com/solarhub/solar-admin/internal/content"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
)

// Session keys of the flash message.
const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashType = "flash_type"
)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	mu             sync.RWMutex
	templates      map[string]*template.Template
	templatesFS    fs.FS
	sessionManager *scs.SessionManager
	isDev          bool
	now            func() time.Time
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// IsDev re-parses the templates on every render.
	IsDev bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templatesFS:    cfg.TemplatesFS,
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		now:            time.Now,
	}

	templates, err := r.parseTemplates()
	if err != nil {
		return nil, err
	}
	r.templates = templates
	return r, nil
}

// parseTemplates builds one template set per page. Admin pages are layered
// base → admin → partials → page; auth pages skip the admin layout.
func (r *Renderer) parseTemplates() (map[string]*template.Template, error) {
	partials, err := templateFiles(r.templatesFS, "partials")
	if err != nil {
		return nil, fmt.Errorf("getting partials: %w", err)
	}

	const baseLayout = "layouts/base.html"
	const adminLayout = "layouts/admin.html"

	sets := []struct {
		dir     string
		layouts []string
	}{
		{"admin", []string{baseLayout, adminLayout}},
		{"auth", []string{baseLayout}},
	}

	templates := make(map[string]*template.Template)
	for _, set := range sets {
		pages, err := templateFiles(r.templatesFS, set.dir)
		if err != nil {
			return nil, fmt.Errorf("getting %s templates: %w", set.dir, err)
		}
		for _, page := range pages {
			name := set.dir + "/" + strings.TrimSuffix(path.Base(page), ".html")

			files := append([]string{}, set.layouts...)
			files = append(files, partials...)
			files = append(files, page)

			tmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.templatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parsing template %s: %w", name, err)
			}
			templates[name] = tmpl
		}
	}
	return templates, nil
}

// templateFiles lists the .html files of dir. A missing dir yields none.
func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"T":   i18n.T,
		"dir": i18n.Direction,
		"langName": func(lang string) string {
			return model.Lang(lang).NativeName()
		},
		"otherLang": func(lang string) string {
			return model.Lang(lang).Other().String()
		},
		"articleTitle": func(a model.Article, lang string) string {
			return a.Title(model.Lang(lang))
		},
		"categoryName": func(c model.Category, lang string) string {
			return c.Name(model.Lang(lang))
		},
		"roleLabel": func(role model.Role) string {
			return role.Label()
		},
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"dateInput":      dateInput,
		"truncate":       truncate,
		"preview":        content.Preview,
		"excerpt":        content.Excerpt,
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}
}

// backendLayouts are the timestamp formats the backend is known to send.
var backendLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseBackendTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range backendLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate renders a backend timestamp as a date. Unparseable values are
// shown as sent.
func formatDate(s string) string {
	if t, ok := parseBackendTime(s); ok {
		return t.Format("2 Jan 2006")
	}
	return s
}

// dateInput renders a backend timestamp as the value of a date input.
func dateInput(s string) string {
	if t, ok := parseBackendTime(s); ok {
		return t.Format(time.DateOnly)
	}
	return ""
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006 15:04 MST")
}

func truncate(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length]) + "…"
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Nav         string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	CSRFField   template.HTML
	Lang        string
	Dir         string
	Langs       []model.Lang
	User        *auth.Identity
}

// T translates key into the language of the page.
func (d TemplateData) T(key string, args ...any) string {
	return i18n.T(d.Lang, key, args...)
}

// SetFlash stores a one-shot message for the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	r.sessionManager.Put(req.Context(), sessionKeyFlash, message)
	r.sessionManager.Put(req.Context(), sessionKeyFlashType, flashType)
}

// Render writes page name with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus writes page name with the given status.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}

	r.fill(req, &data)

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.isDev {
		templates, err := r.parseTemplates()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.templates = templates
		r.mu.Unlock()
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return tmpl, nil
}

func (r *Renderer) fill(req *http.Request, data *TemplateData) {
	ctx := req.Context()

	data.CurrentYear = r.now().Year()
	data.Lang = middleware.LangFromContext(ctx)
	data.Dir = i18n.Direction(data.Lang)
	data.Langs = model.Langs
	if data.User == nil {
		data.User = middleware.UserFromContext(ctx)
	}
	data.CSRFField = csrf.TemplateField(req)

	if r.sessionManager != nil && data.Flash == "" {
		if flash := r.sessionManager.PopString(ctx, sessionKeyFlash); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(ctx, sessionKeyFlashType)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}
}

// Page renders name and answers 500 when rendering fails.
func (r *Renderer) Page(w http.ResponseWriter, req *http.Request, name string, data TemplateData) {
	if err := r.Render(w, req, name, data); err != nil {
		slog.ErrorContext(req.Context(), "rendering page", "template", name, "error", err)
		http.Error(w, i18n.T(middleware.LangFromContext(req.Context()), "error.internal"), http.StatusInternalServerError)
	}
}
