// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/testutil"
)

type fakeBackend struct {
	resp  *apiclient.LoginResponse
	err   error
	calls int
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*apiclient.LoginResponse, error) {
	f.calls++
	return f.resp, f.err
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestValidate_ExpiredTokenRejected(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "exp": fixedNow.Add(-time.Minute).Unix()})

	if _, err := Validate(token, fixedNow); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_ExpEqualNowRejected(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "exp": fixedNow.Unix()})

	if _, err := Validate(token, fixedNow); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_NoExpAccepted(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": 7, "name": "Nour", "email": "n@x", "role": 1})

	ident, err := Validate(token, fixedNow)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ident.ID != "7" || ident.Name != "Nour" || ident.Email != "n@x" {
		t.Errorf("identity = %+v", ident)
	}
	if !ident.IsAdmin() {
		t.Error("role 1 should be admin")
	}
}

func TestValidate_NonNumericExpIgnored(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "exp": "soon"})

	if _, err := Validate(token, fixedNow); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	tests := []struct {
		name  string
		token string
	}{
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"garbage payload", header + ".!!!.sig"},
		{"payload not json", header + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Validate(tt.token, fixedNow); !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Validate() error = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestValidate_UnknownAlgStillDecodes(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX999"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"id":"5","role":"admin"}`))

	ident, err := Validate(header+"."+payload+".sig", fixedNow)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ident.ID != "5" || !ident.IsAdmin() {
		t.Errorf("identity = %+v", ident)
	}
}

func TestValidate_NoID(t *testing.T) {
	token := testutil.Token(t, map[string]any{"email": "x@y"})

	if _, err := Validate(token, fixedNow); !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("Validate() error = %v, want ErrNoIdentity", err)
	}
}

func TestRestore_Absent(t *testing.T) {
	tokens := testutil.NewMemoryTokens("")
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock))

	if st := r.Restore(context.Background()); st.Authenticated() {
		t.Error("expected unauthenticated")
	}
}

func TestRestore_ExpiredPurgesToken(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "exp": fixedNow.Add(-time.Hour).Unix()})
	tokens := testutil.NewMemoryTokens(token)
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock), WithLogger(testutil.TestLoggerSilent()))

	st := r.Restore(context.Background())

	if st.Authenticated() {
		t.Error("expected unauthenticated")
	}
	if tokens.Token(context.Background()) != "" {
		t.Error("expired token should be purged")
	}
}

func TestRestore_MalformedPurgesToken(t *testing.T) {
	tokens := testutil.NewMemoryTokens("not-a-jwt")
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock), WithLogger(testutil.TestLoggerSilent()))

	if st := r.Restore(context.Background()); st.Authenticated() {
		t.Error("expected unauthenticated")
	}
	if tokens.Clears != 1 {
		t.Errorf("Clears = %d, want 1", tokens.Clears)
	}
}

func TestRestore_NoExpAuthenticates(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "3", "name": "Omar", "role": "Publisher"})
	tokens := testutil.NewMemoryTokens(token)
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock))

	st := r.Restore(context.Background())

	if !st.Authenticated() {
		t.Fatal("expected authenticated")
	}
	if st.User.ID != "3" || st.User.Name != "Omar" {
		t.Errorf("user = %+v", st.User)
	}
	if st.User.IsAdmin() {
		t.Error("publisher should not be admin")
	}
	if tokens.Token(context.Background()) != token {
		t.Error("token should be kept")
	}
}

func TestRestore_DevBypass(t *testing.T) {
	tokens := testutil.NewMemoryTokens("")
	backend := &fakeBackend{}
	r := NewReconciler(tokens, backend, WithClock(clock), WithDevBypass(true))

	st := r.Restore(context.Background())

	if !st.Authenticated() || !st.User.IsAdmin() {
		t.Fatalf("expected dev admin, got %+v", st)
	}
	if st.User.ID != "dev-admin" || st.User.Email != "admin@example.com" {
		t.Errorf("user = %+v", st.User)
	}
	if tokens.Token(context.Background()) != DevToken {
		t.Error("dev token should be stored")
	}
	if backend.calls != 0 {
		t.Error("backend must not be called by the bypass")
	}

	// A second restore keeps the dev session without saving again.
	st = r.Restore(context.Background())
	if !st.Authenticated() || tokens.Saves != 1 {
		t.Errorf("second restore: authenticated=%v saves=%d", st.Authenticated(), tokens.Saves)
	}
}

func TestRestore_DevBypassPrefersValidToken(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "9", "role": 2})
	tokens := testutil.NewMemoryTokens(token)
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock), WithDevBypass(true))

	st := r.Restore(context.Background())
	if st.User == nil || st.User.ID != "9" {
		t.Errorf("user = %+v, want real token identity", st.User)
	}
}

func TestRestore_DevTokenWithoutBypassIsDiscarded(t *testing.T) {
	tokens := testutil.NewMemoryTokens(DevToken)
	r := NewReconciler(tokens, &fakeBackend{}, WithClock(clock), WithLogger(testutil.TestLoggerSilent()))

	if st := r.Restore(context.Background()); st.Authenticated() {
		t.Error("dev token must not authenticate without the bypass")
	}
}

func TestSignIn_Success(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "role": "Admin", "exp": fixedNow.Add(time.Hour).Unix()})
	tokens := testutil.NewMemoryTokens("")
	r := NewReconciler(tokens, &fakeBackend{resp: &apiclient.LoginResponse{Token: token}}, WithClock(clock))

	st, err := r.SignIn(context.Background(), "admin@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if !st.Authenticated() || !st.User.IsAdmin() {
		t.Errorf("state = %+v, want authenticated admin", st)
	}
	if tokens.Token(context.Background()) != token {
		t.Error("token should be persisted")
	}
}

func TestSignIn_BackendMessage(t *testing.T) {
	tokens := testutil.NewMemoryTokens("old")
	backend := &fakeBackend{err: &apiclient.APIError{Status: http.StatusUnauthorized, Message: "Bad credentials"}}
	r := NewReconciler(tokens, backend, WithClock(clock))

	_, err := r.SignIn(context.Background(), "a", "b")

	if err == nil || err.Error() != "Bad credentials" {
		t.Fatalf("SignIn() error = %v, want Bad credentials", err)
	}
	if !IsSignInError(err) {
		t.Error("expected SignInError")
	}
	if tokens.Token(context.Background()) != "" {
		t.Error("token should be purged on failure")
	}
}

func TestSignIn_TransportErrorUsesFallback(t *testing.T) {
	tokens := testutil.NewMemoryTokens("")
	r := NewReconciler(tokens, &fakeBackend{err: errors.New("connection refused")}, WithClock(clock))

	_, err := r.SignIn(context.Background(), "a", "b")
	if err == nil || err.Error() != GenericSignInError {
		t.Fatalf("SignIn() error = %v, want %q", err, GenericSignInError)
	}
}

func TestSignIn_ExpiredTokenRejected(t *testing.T) {
	token := testutil.Token(t, map[string]any{"id": "1", "exp": fixedNow.Add(-time.Second).Unix()})
	tokens := testutil.NewMemoryTokens("")
	r := NewReconciler(tokens, &fakeBackend{resp: &apiclient.LoginResponse{Token: token, Message: "Session expired"}}, WithClock(clock))

	st, err := r.SignIn(context.Background(), "a", "b")

	if st.Authenticated() {
		t.Error("expected unauthenticated")
	}
	if err == nil || err.Error() != "Session expired" {
		t.Errorf("SignIn() error = %v, want backend message", err)
	}
	if !errors.Is(err, ErrTokenExpired) {
		t.Error("error should wrap ErrTokenExpired")
	}
	if tokens.Saves != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestSignIn_MissingToken(t *testing.T) {
	tokens := testutil.NewMemoryTokens("")
	r := NewReconciler(tokens, &fakeBackend{resp: &apiclient.LoginResponse{}}, WithClock(clock))

	_, err := r.SignIn(context.Background(), "a", "b")
	if err == nil || err.Error() != GenericSignInError {
		t.Fatalf("SignIn() error = %v, want generic message", err)
	}
}

func TestSignOut(t *testing.T) {
	tokens := testutil.NewMemoryTokens("x.y.z")
	r := NewReconciler(tokens, &fakeBackend{})

	r.SignOut(context.Background())

	if tokens.Token(context.Background()) != "" {
		t.Error("token should be cleared")
	}
}
