// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/model"
)

// GenericSignInError is shown when the backend gives no reason.
const GenericSignInError = "Invalid or expired token"

// DevToken is the placeholder token stored by the development bypass.
const DevToken = "dev-token"

// TokenStore persists the single bearer token of a browser session.
type TokenStore interface {
	Token(ctx context.Context) string
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context)
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
}

// State is the outcome of a reconciliation.
type State struct {
	Token string
	User  *Identity
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// SignInError carries the message to show after a failed sign-in.
type SignInError struct {
	Message string
	Err     error
}

func (e *SignInError) Error() string { return e.Message }

func (e *SignInError) Unwrap() error { return e.Err }

// Reconciler derives the session state from the stored token.
type Reconciler struct {
	tokens    TokenStore
	backend   Authenticator
	devBypass bool
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDevBypass enables the development administrator session.
func WithDevBypass(enabled bool) Option {
	return func(r *Reconciler) {
		r.devBypass = enabled
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(tokens TokenStore, backend Authenticator, opts ...Option) *Reconciler {
	r := &Reconciler{
		tokens:  tokens,
		backend: backend,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DevIdentity is the administrator fabricated by the development bypass.
func DevIdentity() *Identity {
	return &Identity{
		ID:    "dev-admin",
		Name:  "Dev Admin",
		Email: "admin@example.com",
		Role:  model.RoleAdmin,
	}
}

// Restore reconciles the stored token. An expired, malformed or id-less
// token is purged and the session is unauthenticated.
func (r *Reconciler) Restore(ctx context.Context) State {
	token := r.tokens.Token(ctx)

	if token != "" && !(r.devBypass && token == DevToken) {
		ident, err := Validate(token, r.now())
		if err == nil {
			return State{Token: token, User: ident}
		}
		r.logger.Debug("discarding stored token", "reason", err)
		r.tokens.Clear(ctx)
		token = ""
	}

	if r.devBypass {
		if token == "" {
			if err := r.tokens.Save(ctx, DevToken); err != nil {
				r.logger.Warn("storing dev token", "error", err)
			}
		}
		return State{Token: DevToken, User: DevIdentity()}
	}

	return State{}
}

// SignIn exchanges credentials for a token, validates it the same way
// Restore does and persists only the token.
func (r *Reconciler) SignIn(ctx context.Context, identifier, secret string) (State, error) {
	resp, err := r.backend.Login(ctx, identifier, secret)
	if err != nil {
		r.tokens.Clear(ctx)
		return State{}, &SignInError{Message: apiclient.MessageOf(err, GenericSignInError), Err: err}
	}

	ident, err := Validate(resp.Token, r.now())
	if err != nil {
		r.tokens.Clear(ctx)
		msg := resp.Message
		if msg == "" {
			msg = GenericSignInError
		}
		return State{}, &SignInError{Message: msg, Err: err}
	}

	if err := r.tokens.Save(ctx, resp.Token); err != nil {
		r.tokens.Clear(ctx)
		return State{}, &SignInError{Message: GenericSignInError, Err: err}
	}

	return State{Token: resp.Token, User: ident}, nil
}

// SignOut purges the token unconditionally.
func (r *Reconciler) SignOut(ctx context.Context) {
	r.tokens.Clear(ctx)
}

// IsSignInError reports whether err came from a failed sign-in.
func IsSignInError(err error) bool {
	var se *SignInError
	return errors.As(err, &se)
}
