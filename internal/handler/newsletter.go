// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
)

// maxSubscriberPages bounds the walk over every subscriber page.
const maxSubscriberPages = 1000

// NewsletterHandler handles the subscriber list and the compose form.
type NewsletterHandler struct {
	renderer *render.Renderer
	api      SubscriberAPI
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(renderer *render.Renderer, api SubscriberAPI) *NewsletterHandler {
	return &NewsletterHandler{renderer: renderer, api: api}
}

// NewsletterData is the newsletter page model.
type NewsletterData struct {
	Subscribers []model.Subscriber
	Pagination  AdminPagination
	Active      int
}

// List handles GET /admin/newsletter?page=N.
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	store := subscriberStore(h.api)

	td := render.TemplateData{Title: i18n.T(lang, "page.newsletter"), Nav: "newsletter"}
	if _, err := store.List(ctx, model.Pagination{Page: pageParam(r), Limit: model.DefaultListLimit}); err != nil {
		slog.ErrorContext(ctx, "listing subscribers", "error", err)
		td.Flash = apiclient.MessageOf(err, i18n.T(lang, "msg.error_loading"))
		td.FlashType = render.FlashError
	}

	page := store.Page()
	td.Data = NewsletterData{
		Subscribers: page.Items,
		Pagination:  BuildAdminPagination(page, store.Pagination(), RouteNewsletter),
		Active:      len(model.Recipients(page.Items, nil)),
	}
	h.renderer.Page(w, r, tmplNewsletter, td)
}

// Delete handles DELETE /admin/newsletter/{id} and its POST form twin.
func (h *NewsletterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectNewsletter) {
		return
	}
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectNewsletter)
	if !ok {
		return
	}

	page := formPage(r)
	next, err := deleteFromPage(r.Context(), subscriberStore(h.api), page, func(ctx context.Context) error {
		return h.api.DeleteSubscriber(ctx, id)
	})
	if err != nil {
		backendError(w, r, h.renderer, pageURL(RouteNewsletter, page), "failed to delete subscriber", err, "subscriber_id", id)
		return
	}

	slog.InfoContext(r.Context(), "subscriber deleted", "subscriber_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, pageURL(RouteNewsletter, next), i18n.T(lang, "msg.deleted", i18n.T(lang, "entity.subscriber")))
}

// Compose handles POST /admin/newsletter/compose. It reports how many
// subscribers the message would reach: the selected ones, or every active
// one when none is selected. Nothing is sent.
func (h *NewsletterHandler) Compose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectNewsletter) {
		return
	}
	back := pageURL(RouteNewsletter, formPage(r))

	subject := strings.TrimSpace(r.FormValue("subject"))
	body := strings.TrimSpace(r.FormValue("message"))
	switch {
	case subject == "":
		flashError(w, r, h.renderer, back, i18n.T(lang, "msg.required", i18n.T(lang, "label.subject")))
		return
	case body == "":
		flashError(w, r, h.renderer, back, i18n.T(lang, "msg.required", i18n.T(lang, "label.message")))
		return
	}

	selected := parseIDs(r.Form["ids"])
	subs, err := h.allSubscribers(ctx)
	if err != nil {
		backendError(w, r, h.renderer, back, "loading newsletter recipients", err)
		return
	}

	recipients := model.Recipients(subs, selected)
	if len(recipients) == 0 {
		flashError(w, r, h.renderer, back, i18n.T(lang, "newsletter.no_recipients"))
		return
	}

	slog.InfoContext(ctx, "newsletter composed", "recipients", len(recipients), "selected", len(selected), "user_id", middleware.GetUserID(r))
	flashAndRedirect(w, r, h.renderer, back, i18n.T(lang, "newsletter.recipients", len(recipients)), render.FlashInfo)
}

// allSubscribers walks every subscriber page.
func (h *NewsletterHandler) allSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	store := subscriberStore(h.api)
	var all []model.Subscriber
	for p := 1; p <= maxSubscriberPages; p++ {
		page, err := store.List(ctx, model.Pagination{Page: p, Limit: model.DefaultListLimit})
		if err != nil {
			return nil, fmt.Errorf("listing subscribers page %d: %w", p, err)
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || p >= page.TotalPages {
			break
		}
	}
	return all, nil
}

func parseIDs(values []string) []int64 {
	var ids []int64
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
