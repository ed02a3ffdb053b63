// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate suggests secondary-language text for bilingual content.
// Providers answer in different shapes; every answer goes through Normalize.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solarhub/solar-admin/internal/model"
)

// Translator turns text from one language into another.
type Translator interface {
	Translate(ctx context.Context, text string, source, target model.Lang) (string, error)
}

// Poster posts a JSON body and returns the raw response.
// *apiclient.Client satisfies it.
type Poster interface {
	DoRaw(ctx context.Context, target string, body any) ([]byte, error)
}

// ErrEmptyResult means the provider answered without a usable translation.
var ErrEmptyResult = errors.New("translation result is empty")

type request struct {
	Q            string `json:"q"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	Format       string `json:"format"`
	Alternatives int    `json:"alternatives,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
}

// BackendTranslator calls the backend translation endpoint with the session's
// bearer token.
type BackendTranslator struct {
	client Poster
	path   string
}

// NewBackendTranslator creates a translator for the backend endpoint at path.
func NewBackendTranslator(client Poster, path string) *BackendTranslator {
	return &BackendTranslator{client: client, path: path}
}

// Translate implements Translator.
func (t *BackendTranslator) Translate(ctx context.Context, text string, source, target model.Lang) (string, error) {
	body, err := t.client.DoRaw(ctx, t.path, request{
		Q:      text,
		Source: source.String(),
		Target: target.String(),
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("backend translate: %w", err)
	}
	return Normalize(body), nil
}

// LibreTranslator calls a LibreTranslate compatible service directly.
type LibreTranslator struct {
	client Poster
	url    string
	apiKey string
}

// NewLibreTranslator creates a translator for an absolute endpoint URL.
func NewLibreTranslator(client Poster, url, apiKey string) *LibreTranslator {
	return &LibreTranslator{client: client, url: url, apiKey: apiKey}
}

// Translate implements Translator.
func (t *LibreTranslator) Translate(ctx context.Context, text string, source, target model.Lang) (string, error) {
	src := source.String()
	if src == "" {
		src = "auto"
	}
	body, err := t.client.DoRaw(ctx, t.url, request{
		Q:            text,
		Source:       src,
		Target:       target.String(),
		Format:       "text",
		Alternatives: 3,
		APIKey:       t.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("libre translate: %w", err)
	}
	return Normalize(body), nil
}

// Service is the best-effort front used by the workflow. It never fails.
type Service struct {
	translator Translator
	logger     *slog.Logger
}

// NewService wraps translator.
func NewService(translator Translator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{translator: translator, logger: logger}
}

// Translate returns the suggestion for text, or "" when text is empty or the
// provider fails. Failures are logged as warnings.
func (s *Service) Translate(ctx context.Context, text string, source, target model.Lang) string {
	if text == "" || s == nil || s.translator == nil {
		return ""
	}

	out, err := s.translator.Translate(ctx, text, source, target)
	if err != nil {
		s.logger.Warn("translate api error",
			"source", source,
			"target", target,
			"error", err,
		)
		return ""
	}
	return out
}
