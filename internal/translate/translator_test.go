// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/cache"
	"github.com/solarhub/solar-admin/internal/config"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/testutil"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

type fakePoster struct {
	target string
	body   any
	resp   []byte
	err    error
}

func (f *fakePoster) DoRaw(_ context.Context, target string, body any) ([]byte, error) {
	f.target = target
	f.body = body
	return f.resp, f.err
}

type countingTranslator struct {
	calls atomic.Int32
	out   string
	err   error
}

func (c *countingTranslator) Translate(context.Context, string, model.Lang, model.Lang) (string, error) {
	c.calls.Add(1)
	return c.out, c.err
}

func TestBackendTranslator_RequestShape(t *testing.T) {
	var got map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/translations/translate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = io.WriteString(w, `{"success":true,"data":{"translations":[{"to":"ar","translated":["مرحبا"]}]}}`)
	}))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(srv.URL+"/api", staticToken("tok"))
	require.NoError(t, err)

	out, err := NewBackendTranslator(client, "translations/translate").
		Translate(context.Background(), "Hello", model.LangEN, model.LangAR)
	require.NoError(t, err)

	assert.Equal(t, "مرحبا", out)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Hello", got["q"])
	assert.Equal(t, "en", got["source"])
	assert.Equal(t, "ar", got["target"])
	assert.Equal(t, "text", got["format"])
	assert.NotContains(t, got, "alternatives")
}

func TestLibreTranslator_RequestShape(t *testing.T) {
	p := &fakePoster{resp: []byte(`{"alternatives":["شمسي"],"translatedText":"شمسية"}`)}

	out, err := NewLibreTranslator(p, "https://libre.example/translate", "k1").
		Translate(context.Background(), "Solar", "", model.LangAR)
	require.NoError(t, err)

	assert.Equal(t, "شمسي", out)
	assert.Equal(t, "https://libre.example/translate", p.target)

	req, ok := p.body.(request)
	require.True(t, ok)
	assert.Equal(t, "auto", req.Source)
	assert.Equal(t, 3, req.Alternatives)
	assert.Equal(t, "k1", req.APIKey)
}

func TestService_SwallowsErrors(t *testing.T) {
	tr := &countingTranslator{err: errors.New("connection refused")}
	svc := NewService(tr, testutil.TestLoggerSilent())

	assert.Equal(t, "", svc.Translate(context.Background(), "Hello", model.LangEN, model.LangAR))
	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestService_EmptyTextShortCircuits(t *testing.T) {
	tr := &countingTranslator{out: "x"}
	svc := NewService(tr, testutil.TestLoggerSilent())

	assert.Equal(t, "", svc.Translate(context.Background(), "", model.LangEN, model.LangAR))
	assert.Equal(t, int32(0), tr.calls.Load())
}

func TestService_UnparseableResponse(t *testing.T) {
	p := &fakePoster{resp: []byte("not json")}
	svc := NewService(NewBackendTranslator(p, "translations/translate"), testutil.TestLoggerSilent())

	assert.Equal(t, "", svc.Translate(context.Background(), "Hello", model.LangEN, model.LangAR))
}

func TestCachedTranslator(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryOptions{})
	defer func() { _ = mc.Close() }()

	next := &countingTranslator{out: "شمسي"}
	ct := NewCachedTranslator(next, mc, time.Minute, testutil.TestLoggerSilent())
	ctx := context.Background()

	for range 3 {
		out, err := ct.Translate(ctx, "Solar", model.LangEN, model.LangAR)
		require.NoError(t, err)
		assert.Equal(t, "شمسي", out)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	// Direction is part of the key.
	_, err := ct.Translate(ctx, "Solar", model.LangAR, model.LangEN)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedTranslator_EmptyNotCached(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryOptions{})
	defer func() { _ = mc.Close() }()

	next := &countingTranslator{out: ""}
	ct := NewCachedTranslator(next, mc, time.Minute, testutil.TestLoggerSilent())

	_, _ = ct.Translate(context.Background(), "x", model.LangEN, model.LangAR)
	_, _ = ct.Translate(context.Background(), "x", model.LangEN, model.LangAR)
	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, 0, mc.Stats().Items)
}

func TestOpenAITranslator(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" مرحبا \n"}}]}`)
	}))
	t.Cleanup(srv.Close)

	tr := NewOpenAITranslator(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL})
	out, err := tr.Translate(context.Background(), "Hello", model.LangEN, model.LangAR)
	require.NoError(t, err)

	assert.Equal(t, "مرحبا", out)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestNew_SelectsProvider(t *testing.T) {
	logger := testutil.TestLoggerSilent()
	p := &fakePoster{}

	tests := []struct {
		name string
		cfg  config.Config
		want any
	}{
		{"relative path uses backend", config.Config{TranslateAPI: "translations/translate", TranslateProvider: "auto"}, &BackendTranslator{}},
		{"absolute url uses libre", config.Config{TranslateAPI: "https://libre.example/translate", TranslateProvider: "auto"}, &LibreTranslator{}},
		{"explicit openai", config.Config{TranslateProvider: "openai", OpenAIAPIKey: "k"}, &OpenAITranslator{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(&tt.cfg, p, nil, logger)
			assert.IsType(t, tt.want, tr)
		})
	}

	mc := cache.NewMemoryCache(cache.MemoryOptions{})
	defer func() { _ = mc.Close() }()
	assert.IsType(t, &CachedTranslator{}, New(&config.Config{TranslateProvider: "backend"}, p, mc, logger))
}
