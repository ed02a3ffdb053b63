// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth reconciles the stored bearer token into an authenticated
// identity. Tokens are issued and signed by the backend; this package only
// reads their claims and checks expiry.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/solarhub/solar-admin/internal/model"
)

// Errors returned by token validation.
var (
	ErrNoToken        = errors.New("no token")
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrNoIdentity     = errors.New("token carries no user id")
)

// Identity is the user derived from token claims. It is never stored on its
// own.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  model.Role
}

// IsAdmin reports whether the identity holds the administrator role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role.IsAdmin()
}

// DisplayName returns the name, or the email when the name is empty.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClaims decodes the payload of a three-segment token without verifying
// its signature.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	// An unknown alg header still leaves the claims decoded.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return claims, nil
}

// Validate decodes token and checks its expiry against now. A token without a
// numeric exp claim is accepted. The identity requires an id claim.
func Validate(token string, now time.Time) (*Identity, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return nil, err
	}

	if exp, ok := numericClaim(claims["exp"]); ok && exp <= float64(now.Unix()) {
		return nil, ErrTokenExpired
	}

	ident := identityFromClaims(claims)
	if ident == nil {
		return nil, ErrNoIdentity
	}
	return ident, nil
}

func identityFromClaims(claims jwt.MapClaims) *Identity {
	id := claimString(claims["id"])
	if id == "" {
		return nil
	}
	return &Identity{
		ID:    id,
		Name:  claimString(claims["name"]),
		Email: claimString(claims["email"]),
		Role:  model.RoleOf(claims["role"]),
	}
}

func numericClaim(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func claimString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
