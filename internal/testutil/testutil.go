// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the admin dashboard.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/solarhub/solar-admin/internal/session"
	"github.com/solarhub/solar-admin/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary session database with migrations applied.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(t.TempDir() + "/sessions.db")
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestSessionManager returns a development session manager over a fresh
// database.
func TestSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	return session.New(TestDB(t), true)
}

// Token returns an HS256 token carrying claims. The signature is never
// checked by the dashboard.
func Token(t *testing.T, claims map[string]any) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// AdminToken returns a token for an administrator valid for one hour.
func AdminToken(t *testing.T) string {
	t.Helper()
	return Token(t, map[string]any{
		"id":    "1",
		"name":  "Admin",
		"email": "admin@example.com",
		"role":  "Admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

// PublisherToken returns a token for a publisher valid for one hour.
func PublisherToken(t *testing.T) string {
	t.Helper()
	return Token(t, map[string]any{
		"id":   2,
		"name": "Pub",
		"role": 2,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
}

// MemoryTokens is an in-memory token store for a single session.
type MemoryTokens struct {
	mu      sync.Mutex
	token   string
	Saves   int
	Clears  int
	SaveErr error
}

// NewMemoryTokens returns a store holding token.
func NewMemoryTokens(token string) *MemoryTokens {
	return &MemoryTokens{token: token}
}

// Token returns the stored token.
func (m *MemoryTokens) Token(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Save stores token unless SaveErr is set.
func (m *MemoryTokens) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	m.Saves++
	return nil
}

// Clear removes the token.
func (m *MemoryTokens) Clear(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.Clears++
}
