// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/audit"
	"github.com/solarhub/solar-admin/internal/model"
)

func newDashboardFixture(t *testing.T) (*testEnv, *fakeAPI) {
	t.Helper()
	env := newTestEnv(t, testAdmin)
	api := newFakeAPI()
	api.categories = []model.Category{category(1, "Energy", "طاقة"), category(2, "Events", "فعاليات")}
	for i := int64(1); i <= 7; i++ {
		api.articles = append(api.articles, article(i, 1+i%2, fmt.Sprintf("Headline %d", i), ""))
	}
	for i := int64(1); i <= 4; i++ {
		api.subscribers = append(api.subscribers, model.Subscriber{ID: i, IsActive: true})
	}
	api.messages = []model.ContactMessage{{ID: 1}, {ID: 2}}

	h := NewDashboardHandler(env.renderer, env.sm, api)
	env.router.Get(RouteAdmin, h.Dashboard)
	return env, api
}

func TestDashboardCounts(t *testing.T) {
	env, _ := newDashboardFixture(t)

	rec := env.do(http.MethodGet, RouteAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<span class="stat-value">7</span>`)
	assert.Contains(t, body, `<span class="stat-value">2</span>`)
	assert.Contains(t, body, `<span class="stat-value">4</span>`)
	assert.Contains(t, body, "Headline 5")
	assert.NotContains(t, body, "Headline 6", "only the five most recent articles are listed")
	assert.Contains(t, body, "Events")
	assert.NotContains(t, body, "Some totals could not be loaded")
}

func TestDashboardPartialFailure(t *testing.T) {
	env, api := newDashboardFixture(t)
	api.failList["subscribers"] = &apiclient.APIError{Status: http.StatusInternalServerError}

	rec := env.do(http.MethodGet, RouteAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Some totals could not be loaded and are shown as zero.")
	assert.Contains(t, body, "The data could not be loaded.")
}

func TestDashboardLastSignIn(t *testing.T) {
	env, _ := newDashboardFixture(t)
	data, err := json.Marshal(audit.SignIn{
		At:      time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
		IP:      "203.0.113.9",
		Country: "JO",
		Browser: "Firefox",
		OS:      "Linux",
		Device:  "desktop",
	})
	require.NoError(t, err)
	env.router.Get("/_seed", func(w http.ResponseWriter, r *http.Request) {
		env.sm.Put(r.Context(), SessionKeyLastSignIn, string(data))
	})
	env.do(http.MethodGet, "/_seed", nil)

	rec := env.do(http.MethodGet, RouteAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "203.0.113.9 (JO)")
	assert.Contains(t, body, "Firefox")
}
