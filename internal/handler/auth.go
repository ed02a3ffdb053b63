// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/solarhub/solar-admin/internal/audit"
	"github.com/solarhub/solar-admin/internal/auth"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/render"
	"github.com/solarhub/solar-admin/internal/session"
)

// SessionAuthenticator reconciles the browser session with the backend.
type SessionAuthenticator interface {
	Restore(ctx context.Context) auth.State
	SignIn(ctx context.Context, identifier, secret string) (auth.State, error)
	SignOut(ctx context.Context)
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	sessions        SessionAuthenticator
	loginProtection *middleware.LoginProtection
	recorder        *audit.Recorder
}

// NewAuthHandler creates a new AuthHandler. lp and rec may be nil.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, sessions SessionAuthenticator, lp *middleware.LoginProtection, rec *audit.Recorder) *AuthHandler {
	return &AuthHandler{
		renderer:        renderer,
		sessionManager:  sm,
		sessions:        sessions,
		loginProtection: lp,
		recorder:        rec,
	}
}

// LoginData is the login page model.
type LoginData struct {
	Email string
}

// LoginForm renders the login page. Signed-in users go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Restore(r.Context()).Authenticated() {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}

	lang := middleware.GetLang(r)
	h.renderer.Page(w, r, tmplLogin, render.TemplateData{
		Title: i18n.T(lang, "page.login"),
		Data:  LoginData{Email: r.URL.Query().Get("email")},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)

	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "auth.credentials_required"))
		return
	}

	clientIP := middleware.ClientIP(r)
	userAgent := r.UserAgent()

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.recordFailure(email, clientIP, userAgent, "account locked")
			flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "auth.account_locked", formatDuration(lang, remaining)))
			return
		}
	}

	state, err := h.sessions.SignIn(r.Context(), email, password)
	if err != nil {
		h.recordFailure(email, clientIP, userAgent, err.Error())

		msg := auth.GenericSignInError
		var se *auth.SignInError
		if errors.As(err, &se) {
			msg = se.Message
		} else {
			slog.ErrorContext(r.Context(), "sign-in error", "error", err)
		}

		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				flashError(w, r, h.renderer, redirectLogin, i18n.T(lang, "auth.too_many_attempts", formatDuration(lang, lockDuration)))
				return
			}
			if remaining := h.loginProtection.RemainingAttempts(email); remaining > 0 && remaining <= 3 {
				msg = msg + " " + i18n.T(lang, "auth.attempts_remaining", remaining)
			}
		}
		flashError(w, r, h.renderer, redirectLogin, msg)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if h.recorder != nil {
		signIn := h.recorder.Success(state.User.ID, clientIP, userAgent)
		if data, err := json.Marshal(signIn); err == nil {
			h.sessionManager.Put(r.Context(), SessionKeyLastSignIn, string(data))
		}
	} else {
		slog.InfoContext(r.Context(), "user signed in", "user_id", state.User.ID)
	}

	flashSuccess(w, r, h.renderer, redirectAdmin, i18n.T(lang, "auth.welcome", state.User.DisplayName()))
}

func (h *AuthHandler) recordFailure(email, ip, userAgent, reason string) {
	if h.recorder != nil {
		h.recorder.Failure(email, ip, userAgent, reason)
	}
}

// Logout purges the token and returns to the login page. The UI language
// survives.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	h.sessions.SignOut(r.Context())
	h.sessionManager.Remove(r.Context(), SessionKeyLastSignIn)

	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "session renewal error", "error", err)
	}

	slog.InfoContext(r.Context(), "user signed out", "user_id", userID)

	lang := middleware.GetLang(r)
	flashAndRedirect(w, r, h.renderer, redirectLogin, i18n.T(lang, "auth.logged_out"), render.FlashInfo)
}

// SetLanguage stores the UI language and returns to the page the switch was
// posted from.
// POST /language
func (h *AuthHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	target := safeRedirect(r.FormValue("redirect"), r.Referer())
	lang := strings.ToLower(strings.TrimSpace(r.FormValue("lang")))
	if !i18n.IsSupported(lang) {
		flashError(w, r, h.renderer, target, i18n.T(middleware.GetLang(r), "msg.unsupported_language"))
		return
	}

	session.SetLanguage(r.Context(), h.sessionManager, lang)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeRedirect returns the first candidate that is a local path, or the
// dashboard.
func safeRedirect(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		u, err := url.Parse(c)
		if err != nil {
			continue
		}
		p := u.EscapedPath()
		if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(u.Path, `\`) {
			continue
		}
		if u.RawQuery != "" {
			p += "?" + u.RawQuery
		}
		return p
	}
	return redirectAdmin
}

// LastSignIn decodes the sign-in stored at login, if any.
func LastSignIn(ctx context.Context, sm *scs.SessionManager) *audit.SignIn {
	raw := sm.GetString(ctx, SessionKeyLastSignIn)
	if raw == "" {
		return nil
	}
	var s audit.SignIn
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	return &s
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(lang string, d time.Duration) string {
	if d < time.Minute {
		return i18n.T(lang, "duration.seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return i18n.T(lang, "duration.minute")
		}
		return i18n.T(lang, "duration.minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return i18n.T(lang, "duration.hour")
	}
	return i18n.T(lang, "duration.hours", hours)
}
