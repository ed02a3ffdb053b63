// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/model"
)

// newNewsletterFixture seeds count subscribers; every third one is inactive.
func newNewsletterFixture(t *testing.T, count int) (*testEnv, *fakeAPI) {
	t.Helper()
	env := newTestEnv(t, testAdmin)
	api := newFakeAPI()
	for i := 1; i <= count; i++ {
		api.subscribers = append(api.subscribers, model.Subscriber{
			ID:             int64(i),
			Name:           fmt.Sprintf("Reader %d", i),
			EmailAddress:   fmt.Sprintf("reader%d@example.com", i),
			DateSubscribed: "2026-01-05T12:00:00Z",
			IsActive:       i%3 != 0,
		})
	}

	h := NewNewsletterHandler(env.renderer, api)
	env.router.Get(RouteNewsletter, h.List)
	env.router.Post(RouteNewsletter+RouteSuffixCompose, h.Compose)
	env.router.Delete(RouteNewsletterID, h.Delete)
	env.router.Post(RouteNewsletterID+RouteSuffixDelete, h.Delete)
	return env, api
}

func compose(subject, message string, ids ...string) url.Values {
	return url.Values{"subject": {subject}, "message": {message}, "page": {"1"}, "ids": ids}
}

func TestNewsletterList(t *testing.T) {
	env, _ := newNewsletterFixture(t, 6)

	rec := env.do(http.MethodGet, RouteNewsletter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "reader6@example.com")
	assert.Contains(t, body, "(4 on this page)")
	assert.Contains(t, body, `action="/admin/newsletter/2/delete"`)
}

func TestNewsletterListEmpty(t *testing.T) {
	env, _ := newNewsletterFixture(t, 0)

	rec := env.do(http.MethodGet, RouteNewsletter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No subscribers yet.")
}

func TestNewsletterComposeValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"no subject", compose(" ", "Hello"), "Subject is required."},
		{"no message", compose("News", ""), "Message is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _ := newNewsletterFixture(t, 3)

			rec := env.do(http.MethodPost, RouteNewsletter+RouteSuffixCompose, tt.form)
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, RouteNewsletter, rec.Header().Get("Location"))
			assert.Equal(t, tt.want, env.flash())
		})
	}
}

func TestNewsletterComposeSelected(t *testing.T) {
	env, api := newNewsletterFixture(t, 6)

	// Selection wins over the active flag; unknown ids are ignored.
	rec := env.do(http.MethodPost, RouteNewsletter+RouteSuffixCompose, compose("News", "Hello", "2", "3", "999", "x"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Newsletter prepared for 2 recipients.", env.flash())
	assert.Empty(t, api.Calls(), "composing sends nothing to the backend")
}

func TestNewsletterComposeEveryActiveSubscriber(t *testing.T) {
	env, _ := newNewsletterFixture(t, 120)

	// 120 subscribers over three pages of 50, 40 of them inactive.
	rec := env.do(http.MethodPost, RouteNewsletter+RouteSuffixCompose, compose("News", "Hello"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Newsletter prepared for 80 recipients.", env.flash())
}

func TestNewsletterComposeNobody(t *testing.T) {
	env, api := newNewsletterFixture(t, 0)
	api.subscribers = []model.Subscriber{{ID: 1, EmailAddress: "gone@example.com"}}

	rec := env.do(http.MethodPost, RouteNewsletter+RouteSuffixCompose, compose("News", "Hello"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "There is nobody to send this newsletter to.", env.flash())
}

func TestNewsletterComposeBackendFailure(t *testing.T) {
	env, api := newNewsletterFixture(t, 3)
	api.failList["subscribers"] = &apiclient.APIError{Status: http.StatusBadGateway, Message: "upstream down"}

	rec := env.do(http.MethodPost, RouteNewsletter+RouteSuffixCompose, compose("News", "Hello"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "upstream down", env.flash())
}

func TestNewsletterDelete(t *testing.T) {
	env, api := newNewsletterFixture(t, 51)

	rec := env.do(http.MethodPost, RouteNewsletter+"/51"+RouteSuffixDelete, url.Values{"page": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteNewsletter, rec.Header().Get("Location"))
	assert.Equal(t, "Subscriber deleted.", env.flash())
	assert.Equal(t, []string{"delete subscriber 51"}, api.Calls())

	rec = env.do(http.MethodPost, RouteNewsletter+"/abc"+RouteSuffixDelete, url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "The requested item was not found.", env.flash())
}
