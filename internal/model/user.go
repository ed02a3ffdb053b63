// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role ids as issued by the backend.
const (
	RoleAdminID     = 1
	RolePublisherID = 2
)

// Role names.
const (
	RoleAdmin     = "Admin"
	RolePublisher = "Publisher"
)

// Role is a user role as carried by tokens and user records. The backend
// sends either a numeric id or a name, so both forms are accepted.
type Role string

// RoleOf converts a decoded JSON or claim value into a Role.
func RoleOf(v any) Role {
	switch r := v.(type) {
	case nil:
		return ""
	case Role:
		return r
	case string:
		return Role(r)
	case float64:
		return Role(strconv.FormatFloat(r, 'f', -1, 64))
	case int:
		return Role(strconv.Itoa(r))
	case int64:
		return Role(strconv.FormatInt(r, 10))
	case json.Number:
		return Role(r.String())
	}
	return Role(fmt.Sprint(v))
}

// IsAdmin reports whether the role grants administrator access:
// the id 1 or the name "admin" in any case.
func (r Role) IsAdmin() bool {
	s := strings.TrimSpace(string(r))
	return s == strconv.Itoa(RoleAdminID) || strings.EqualFold(s, RoleAdmin)
}

// IsPublisher reports whether the role is the publisher role.
func (r Role) IsPublisher() bool {
	s := strings.TrimSpace(string(r))
	return s == strconv.Itoa(RolePublisherID) || strings.EqualFold(s, RolePublisher)
}

// ID returns the numeric role id, or 0 for an unknown role.
func (r Role) ID() int {
	switch {
	case r.IsAdmin():
		return RoleAdminID
	case r.IsPublisher():
		return RolePublisherID
	}
	return 0
}

// Label returns the display name of the role.
func (r Role) Label() string {
	switch {
	case r.IsAdmin():
		return RoleAdmin
	case r.IsPublisher():
		return RolePublisher
	}
	return string(r)
}

// UnmarshalJSON accepts a string, a number or null.
func (r *Role) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	if err != nil {
		return fmt.Errorf("decoding role: %w", err)
	}
	*r = Role(s)
	return nil
}

// FlexID is an identifier the backend may send as a string or a number.
type FlexID string

// UnmarshalJSON accepts a string, a number or null.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	if err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = FlexID(s)
	return nil
}

func (id FlexID) String() string {
	return string(id)
}

func flexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// CMSUser is a dashboard user account managed through the backend.
type CMSUser struct {
	ID        FlexID `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SignupRequest registers a new dashboard user.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"roleId"`
}

// UserUpdate changes a user's display name and role.
type UserUpdate struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
