// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package workflow implements the two-step bilingual edit: the operator saves
// the primary language, a suggestion for the secondary language is fetched in
// the background, and the operator confirms both.
package workflow

import "errors"

// State is the position of a workflow in the edit cycle.
type State int

// Workflow states.
const (
	Editing State = iota
	Saving
	Translating
	ConfirmingTranslation
	Committed
)

var stateNames = [...]string{
	Editing:               "editing",
	Saving:                "saving",
	Translating:           "translating",
	ConfirmingTranslation: "confirming",
	Committed:             "committed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Kind is the entity a workflow edits.
type Kind string

// Kinds.
const (
	KindArticle  Kind = "article"
	KindCategory Kind = "category"
)

// Errors returned by workflow operations.
var (
	ErrNotFound     = errors.New("workflow not found")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrNoRecordID   = errors.New("backend returned no record id")
)

// ValidationError names the missing required input. No request is made when
// validation fails.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// ErrValidation matches every ValidationError with errors.Is.
var ErrValidation = errors.New("validation failed")

// Is makes errors.Is(err, ErrValidation) true for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
