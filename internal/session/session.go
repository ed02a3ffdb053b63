// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session wraps the scs session manager and exposes the two values
// the dashboard persists per browser: the bearer token and the UI language.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	KeyToken      = "solar_token_v1"
	KeyLegacyUser = "solar_user_v1"
	KeyLanguage   = "solar_lang"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.IdleTimeout = 8 * time.Hour
	sm.Cookie.Name = "solar_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-solar_session"
	}

	return sm
}

// TokenStore keeps the single bearer token of the current browser session.
type TokenStore struct {
	sm *scs.SessionManager
}

// NewTokenStore creates a TokenStore backed by sm.
func NewTokenStore(sm *scs.SessionManager) *TokenStore {
	return &TokenStore{sm: sm}
}

// Token returns the stored token, or "" when none is stored.
func (s *TokenStore) Token(ctx context.Context) string {
	return s.sm.GetString(ctx, KeyToken)
}

// Save stores token, renewing the session id first so a pre-login cookie
// cannot be reused.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session: %w", err)
	}
	s.sm.Put(ctx, KeyToken, token)
	s.sm.Remove(ctx, KeyLegacyUser)
	return nil
}

// Clear purges the token and any legacy user record.
func (s *TokenStore) Clear(ctx context.Context) {
	s.sm.Remove(ctx, KeyToken)
	s.sm.Remove(ctx, KeyLegacyUser)
}

// Language returns the stored UI language, or "" when unset.
func Language(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, KeyLanguage)
}

// SetLanguage stores the UI language.
func SetLanguage(ctx context.Context, sm *scs.SessionManager, lang string) {
	sm.Put(ctx, KeyLanguage, lang)
}
