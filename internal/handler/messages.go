// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
)

// MessagesHandler handles the contact message inbox.
type MessagesHandler struct {
	renderer *render.Renderer
	api      MessageAPI
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(renderer *render.Renderer, api MessageAPI) *MessagesHandler {
	return &MessagesHandler{renderer: renderer, api: api}
}

// MessagesListData is the inbox page model.
type MessagesListData struct {
	Messages   []model.ContactMessage
	Pagination AdminPagination
}

// MessageData is the single message page model.
type MessageData struct {
	Message model.ContactMessage
	Page    int
	BackURL string
}

// List handles GET /admin/messages?page=N.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	store := messageStore(h.api)

	td := render.TemplateData{Title: i18n.T(lang, "page.messages"), Nav: "messages"}
	if _, err := store.List(ctx, model.Pagination{Page: pageParam(r), Limit: model.DefaultMessageLimit}); err != nil {
		slog.ErrorContext(ctx, "listing contact messages", "error", err)
		td.Flash = apiclient.MessageOf(err, i18n.T(lang, "msg.error_loading"))
		td.FlashType = render.FlashError
	}

	page := store.Page()
	td.Data = MessagesListData{
		Messages:   page.Items,
		Pagination: BuildAdminPagination(page, store.Pagination(), RouteMessages),
	}
	h.renderer.Page(w, r, tmplMessages, td)
}

// Show handles GET /admin/messages/{id}?page=N. The backend has no single
// message endpoint, so the message is looked up on the list page it was
// opened from.
func (h *MessagesHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectMessages)
	if !ok {
		return
	}
	page := pageParam(r)
	back := pageURL(RouteMessages, page)

	msg, ok := requireEntityWithRedirect(w, r, h.renderer, back, "message", id,
		func(id int64) (model.ContactMessage, error) { return h.find(r.Context(), id, page) })
	if !ok {
		return
	}

	lang := middleware.GetLang(r)
	h.renderer.Page(w, r, tmplMessage, render.TemplateData{
		Title: i18n.T(lang, "page.message"),
		Nav:   "messages",
		Data:  MessageData{Message: msg, Page: page, BackURL: back},
	})
}

func (h *MessagesHandler) find(ctx context.Context, id int64, page int) (model.ContactMessage, error) {
	store := messageStore(h.api)
	if _, err := store.List(ctx, model.Pagination{Page: page}); err != nil {
		return model.ContactMessage{}, err
	}
	for _, m := range store.Items() {
		if m.ID == id {
			return m, nil
		}
	}
	return model.ContactMessage{}, &apiclient.APIError{Status: http.StatusNotFound}
}

// Delete handles DELETE /admin/messages/{id} and its POST form twin. The
// same page is refetched with the same size.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectMessages) {
		return
	}
	id, ok := requireIDWithRedirect(w, r, h.renderer, redirectMessages)
	if !ok {
		return
	}

	page := formPage(r)
	next, err := deleteFromPage(r.Context(), messageStore(h.api), page, func(ctx context.Context) error {
		return h.api.DeleteContactMessage(ctx, id)
	})
	if err != nil {
		backendError(w, r, h.renderer, pageURL(RouteMessages, page), "failed to delete contact message", err, "message_id", id)
		return
	}

	slog.InfoContext(r.Context(), "contact message deleted", "message_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, pageURL(RouteMessages, next), i18n.T(lang, "msg.deleted", i18n.T(lang, "entity.message")))
}
