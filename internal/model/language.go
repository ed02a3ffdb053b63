// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content types exchanged with the REST backend
// and shared across the admin dashboard.
package model

import "strings"

// Language text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Lang is a content or UI language code.
type Lang string

// Supported languages.
const (
	LangEN Lang = "en"
	LangAR Lang = "ar"
)

// DefaultLang is the primary authoring language.
const DefaultLang = LangEN

// Langs lists the supported languages in display order.
var Langs = []Lang{LangEN, LangAR}

// ParseLang returns the supported language matching s, or false.
func ParseLang(s string) (Lang, bool) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case LangEN:
		return LangEN, true
	case LangAR:
		return LangAR, true
	}
	return "", false
}

// Other returns the counterpart language: en for ar and ar for everything else.
func (l Lang) Other() Lang {
	if l == LangAR {
		return LangEN
	}
	return LangAR
}

// Direction returns the text direction of the language.
func (l Lang) Direction() string {
	if l == LangAR {
		return DirectionRTL
	}
	return DirectionLTR
}

// IsRTL returns true if the language is right-to-left.
func (l Lang) IsRTL() bool {
	return l.Direction() == DirectionRTL
}

// NativeName returns the language name in its own script.
func (l Lang) NativeName() string {
	switch l {
	case LangAR:
		return "العربية"
	case LangEN:
		return "English"
	}
	return string(l)
}

func (l Lang) String() string {
	return string(l)
}
