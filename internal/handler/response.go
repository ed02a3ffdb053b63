// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST/PUT/DELETE redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, i18n.T(middleware.GetLang(r), "msg.invalid_form"))
		return false
	}
	return true
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, r *http.Request, logMsg string, args ...any) {
	slog.ErrorContext(r.Context(), logMsg, args...)
	http.Error(w, i18n.T(middleware.GetLang(r), "error.internal"), http.StatusInternalServerError)
}

// backendError turns a failed backend call into a flash message. The
// backend's own message wins over the generic one. A rejected token sends the
// operator to the login page.
func backendError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, logMsg string, err error, args ...any) {
	lang := middleware.GetLang(r)
	if apiclient.IsUnauthorized(err) {
		slog.WarnContext(r.Context(), logMsg, append(args, "error", err)...)
		flashError(w, r, renderer, RouteLogin, i18n.T(lang, "msg.session_expired"))
		return
	}
	slog.ErrorContext(r.Context(), logMsg, append(args, "error", err)...)
	flashError(w, r, renderer, url, apiclient.MessageOf(err, i18n.T(lang, "msg.backend_error")))
}

// parseIDParam reads the {id} URL parameter as a positive integer.
func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// requireIDWithRedirect parses {id} and flashes "not found" when it is
// malformed.
func requireIDWithRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) (int64, bool) {
	id, ok := parseIDParam(r)
	if !ok {
		flashError(w, r, renderer, redirectURL, i18n.T(middleware.GetLang(r), "msg.not_found"))
	}
	return id, ok
}

// requireEntityWithRedirect fetches an entity by ID using the provided query function.
// On error, it sets a flash message and redirects. Returns the entity and true if successful,
// or zero value and false if an error occurred (redirect already performed).
func requireEntityWithRedirect[T any, K int64 | string](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	redirectURL string,
	entityName string,
	id K,
	queryFn func(id K) (T, error),
) (T, bool) {
	var zero T
	entity, err := queryFn(id)
	if err != nil {
		lang := middleware.GetLang(r)
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			flashError(w, r, renderer, redirectURL, i18n.T(lang, "msg.not_found"))
		} else {
			slog.ErrorContext(r.Context(), "failed to get "+entityName, "error", err, entityName+"_id", id)
			flashError(w, r, renderer, redirectURL, apiclient.MessageOf(err, i18n.T(lang, "msg.error_loading")))
		}
		return zero, false
	}
	return entity, true
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// formPage reads the page a list form was posted from.
func formPage(r *http.Request) int {
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil || page < 1 {
		return pageParam(r)
	}
	return page
}

// pageURL appends ?page=n to base when n is past the first page.
func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	return base + "?page=" + strconv.Itoa(page)
}

// ownerOf returns the workflow owner for the signed-in user.
func ownerOf(r *http.Request) string {
	return middleware.GetUserID(r)
}

// uiLang returns the UI language of r as a content language.
func uiLang(r *http.Request) model.Lang {
	lang, ok := model.ParseLang(middleware.GetLang(r))
	if !ok {
		return model.DefaultLang
	}
	return lang
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}
