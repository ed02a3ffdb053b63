// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/solarhub/solar-admin/internal/cache"
	"github.com/solarhub/solar-admin/internal/model"
)

// CachedTranslator remembers non-empty results of the wrapped translator.
type CachedTranslator struct {
	next   Translator
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedTranslator wraps next with c.
func NewCachedTranslator(next Translator, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedTranslator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedTranslator{next: next, cache: c, ttl: ttl, logger: logger}
}

// Translate implements Translator.
func (t *CachedTranslator) Translate(ctx context.Context, text string, source, target model.Lang) (string, error) {
	key := cacheKey(text, source, target)

	if v, err := t.cache.Get(ctx, key); err == nil {
		return string(v), nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		t.logger.Debug("translation cache read failed", "error", err)
	}

	out, err := t.next.Translate(ctx, text, source, target)
	if err != nil || out == "" {
		return out, err
	}

	if err := t.cache.Set(ctx, key, []byte(out), t.ttl); err != nil {
		t.logger.Debug("translation cache write failed", "error", err)
	}
	return out, nil
}

func cacheKey(text string, source, target model.Lang) string {
	sum := blake2b.Sum256([]byte(source.String() + "|" + target.String() + "|" + text))
	return "tr:" + hex.EncodeToString(sum[:])
}
