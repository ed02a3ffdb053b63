// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n holds the admin UI message catalogs for English and Arabic.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/solarhub/solar-admin/internal/model"
)

//go:embed locales
var localesFS embed.FS

// Message is one catalog entry.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile is the layout of locales/<lang>/messages.json.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds the messages of every supported language.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

var catalog *Catalog

// SupportedLanguages lists the admin UI languages. The first one is the
// default.
var SupportedLanguages = []string{string(model.LangEN), string(model.LangAR)}

// Init loads the embedded catalogs.
func Init(logger *slog.Logger) error {
	c := &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  SupportedLanguages[0],
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		tags = append(tags, language.MustParse(lang))
	}
	c.supported = tags
	c.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := c.loadLanguage(lang); err != nil {
			return fmt.Errorf("loading language %s: %w", lang, err)
		}
	}

	catalog = c
	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file MessageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if file.Language != lang {
		return fmt.Errorf("%s declares language %q", path, file.Language)
	}

	msgs := make(map[string]string, len(file.Messages))
	for _, msg := range file.Messages {
		msgs[msg.ID] = msg.Translation
	}

	c.mu.Lock()
	c.translations[lang] = msgs
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("loaded translations", "language", lang, "count", len(msgs))
	}
	return nil
}

// T returns the message for key in lang, formatted with args. Unknown
// languages and missing keys fall back to English, then to the key itself.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	translation, ok := catalog.translations[lang][key]
	if !ok && lang != catalog.defaultLang {
		translation, ok = catalog.translations[catalog.defaultLang][key]
		if ok && catalog.logger != nil && IsSupported(lang) {
			catalog.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}
	catalog.mu.RUnlock()

	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// Translator returns T bound to lang, for templates.
func Translator(lang string) func(key string, args ...any) string {
	return func(key string, args ...any) string {
		return T(lang, key, args...)
	}
}

// DefaultLanguage returns the fallback UI language.
func DefaultLanguage() string {
	if catalog == nil {
		return SupportedLanguages[0]
	}
	return catalog.defaultLang
}

// MatchLanguage picks the supported language closest to an Accept-Language
// header or a bare language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return DefaultLanguage()
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, confidence := catalog.matcher.Match(tags...)
	if confidence == language.No || idx < 0 || idx >= len(catalog.supported) {
		return catalog.defaultLang
	}
	return SupportedLanguages[idx]
}

// IsSupported reports whether lang is an admin UI language.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}

// Direction returns "rtl" for Arabic and "ltr" otherwise.
func Direction(lang string) string {
	return model.Lang(lang).Direction()
}

// Keys returns the sorted message ids of lang.
func Keys(lang string) []string {
	if catalog == nil {
		return nil
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	keys := make([]string, 0, len(catalog.translations[lang]))
	for k := range catalog.translations[lang] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TranslationCount returns the number of messages loaded for lang.
func TranslationCount(lang string) int {
	if catalog == nil {
		return 0
	}
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	return len(catalog.translations[lang])
}
