// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/solarhub/solar-admin/internal/model"
)

// LoginResponse is the credential exchange result.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges an email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	respBody, err := c.send(ctx, http.MethodPost, "auth/login", requestOptions{
		body:        bytes.NewReader(body),
		contentType: "application/json",
		anonymous:   true,
	})
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := decodeInto(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new dashboard user.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) error {
	return c.doJSON(ctx, http.MethodPost, "auth/signup", nil, req, nil)
}

// DeleteUser removes a dashboard user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.deleteResource(ctx, "auth/users/"+url.PathEscape(id))
}
