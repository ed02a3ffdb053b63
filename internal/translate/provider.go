// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"log/slog"
	"net/http"

	"github.com/solarhub/solar-admin/internal/cache"
	"github.com/solarhub/solar-admin/internal/config"
)

// New builds the configured provider, wrapped in the translation cache when
// one is given.
func New(cfg *config.Config, client Poster, c cache.Cache, logger *slog.Logger) Translator {
	var tr Translator

	switch cfg.ResolvedTranslateProvider() {
	case config.ProviderOpenAI:
		tr = NewOpenAITranslator(OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			HTTPClient: &http.Client{Timeout: cfg.TranslateTimeout},
		})
	case config.ProviderLibre:
		tr = NewLibreTranslator(client, cfg.TranslateAPI, cfg.TranslateKey)
	default:
		tr = NewBackendTranslator(client, cfg.TranslateAPI)
	}

	logger.Info("translation provider configured", "provider", cfg.ResolvedTranslateProvider())

	if c == nil {
		return tr
	}
	return NewCachedTranslator(tr, c, cfg.CacheTTLDuration(), logger)
}
