// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"encoding/json"
)

// conventionalFields are probed in order on the payload and on its data field.
var conventionalFields = []string{"translatedText", "translated_text", "translation"}

// Normalize extracts the best translated string from a provider response.
// Unknown, empty or invalid payloads yield "".
func Normalize(payload []byte) string {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return ""
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return ""
	}
	return NormalizeValue(v)
}

// NormalizeValue applies the same precedence to an already decoded payload.
func NormalizeValue(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case map[string]any:
		return fromObject(p)
	}
	return ""
}

func fromObject(obj map[string]any) string {
	// LibreTranslate: {alternatives: [...], translatedText: "..."}
	if alts, ok := obj["alternatives"].([]any); ok && len(alts) > 0 {
		if s, ok := alts[0].(string); ok {
			return s
		}
	}

	data := obj["data"]

	// Backend wrapper: {data: {translations: [{to, translated: [...]}]}}
	if dataObj, ok := data.(map[string]any); ok {
		if groups, ok := dataObj["translations"].([]any); ok {
			for _, g := range groups {
				if s := firstTranslated(g); s != "" {
					return s
				}
			}
		}
	}

	if s := probe(obj); s != "" {
		return s
	}
	if dataObj, ok := data.(map[string]any); ok {
		if s := probe(dataObj); s != "" {
			return s
		}
	}
	if s, ok := data.(string); ok {
		return s
	}
	return ""
}

// firstTranslated returns the first entry of a group's non-empty translated
// list.
func firstTranslated(group any) string {
	g, ok := group.(map[string]any)
	if !ok {
		return ""
	}
	list, ok := g["translated"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	s, _ := list[0].(string)
	return s
}

func probe(obj map[string]any) string {
	for _, field := range conventionalFields {
		if s, ok := obj[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
