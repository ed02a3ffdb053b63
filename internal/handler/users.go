// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solarhub/solar-admin/internal/apiclient"
	"github.com/solarhub/solar-admin/internal/i18n"
	"github.com/solarhub/solar-admin/internal/middleware"
	"github.com/solarhub/solar-admin/internal/model"
	"github.com/solarhub/solar-admin/internal/render"
)

// generatedPasswordBytes is the entropy of passwords handed to new users.
const generatedPasswordBytes = 12

// UsersHandler handles user management routes. Admin only.
type UsersHandler struct {
	renderer *render.Renderer
	api      UserAPI
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(renderer *render.Renderer, api UserAPI) *UsersHandler {
	return &UsersHandler{renderer: renderer, api: api}
}

// UsersListData is the user list page model.
type UsersListData struct {
	Users      []model.CMSUser
	Pagination AdminPagination
	CurrentID  string
}

// UserFormData is the user form model.
type UserFormData struct {
	Action     string
	IsNew      bool
	User       model.CMSUser
	Page       int
	Roles      []model.Role
	ErrorField string
}

var userRoles = []model.Role{model.RoleAdmin, model.RolePublisher}

// List handles GET /admin/users?page=N.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	store := userStore(h.api)

	td := render.TemplateData{Title: i18n.T(lang, "page.users"), Nav: "users"}
	if _, err := store.List(ctx, model.Pagination{Page: pageParam(r), Limit: model.DefaultListLimit}); err != nil {
		slog.ErrorContext(ctx, "listing users", "error", err)
		td.Flash = apiclient.MessageOf(err, i18n.T(lang, "msg.error_loading"))
		td.FlashType = render.FlashError
	}

	page := store.Page()
	td.Data = UsersListData{
		Users:      page.Items,
		Pagination: BuildAdminPagination(page, store.Pagination(), RouteUsers),
		CurrentID:  middleware.GetUserID(r),
	}
	h.renderer.Page(w, r, tmplUsers, td)
}

// NewForm handles GET /admin/users/new.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, UserFormData{
		Action: RouteUsers,
		IsNew:  true,
		User:   model.CMSUser{Role: model.RolePublisher},
	}, "")
}

// Create handles POST /admin/users. The account gets a generated password
// which is shown once to the admin.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, RouteUsers+RouteSuffixNew) {
		return
	}

	form := UserFormData{Action: RouteUsers, IsNew: true, User: userFromForm(r)}
	if field := validateUser(form.User, true); field != "" {
		form.ErrorField = field
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, i18n.T(lang, "msg.required", i18n.T(lang, "label."+field)))
		return
	}

	password, err := generatePassword()
	if err != nil {
		logAndInternalError(w, r, "generating password", "error", err)
		return
	}

	err = h.api.Signup(ctx, model.SignupRequest{
		Name:     form.User.Name,
		Email:    form.User.Email,
		Password: password,
		RoleID:   form.User.Role.ID(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "creating user", "email", form.User.Email, "error", err)
		h.renderForm(w, r, http.StatusBadGateway, form, apiclient.MessageOf(err, i18n.T(lang, "msg.backend_error")))
		return
	}

	slog.InfoContext(ctx, "user created", "email", form.User.Email, "role", form.User.Role.Label(), "created_by", middleware.GetUserID(r))
	flashAndRedirect(w, r, h.renderer, RouteUsers, i18n.T(lang, "users.created", form.User.Email, password), render.FlashSuccess)
}

// EditForm handles GET /admin/users/{id}?page=N. There is no single user
// endpoint, so the user is looked up on the list page it was opened from.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page := pageParam(r)
	back := pageURL(RouteUsers, page)

	user, ok := requireEntityWithRedirect(w, r, h.renderer, back, "user", id,
		func(id string) (model.CMSUser, error) { return h.find(r.Context(), id, page) })
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, UserFormData{Action: userURL(id), User: user, Page: page}, "")
}

// Update handles PUT/POST /admin/users/{id}: name and role only.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	id := chi.URLParam(r, "id")
	if !parseFormOrRedirect(w, r, h.renderer, userURL(id)) {
		return
	}
	page := formPage(r)

	user := userFromForm(r)
	user.ID = model.FlexID(id)
	form := UserFormData{Action: userURL(id), User: user, Page: page}
	if field := validateUser(user, false); field != "" {
		form.ErrorField = field
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, i18n.T(lang, "msg.required", i18n.T(lang, "label."+field)))
		return
	}
	if id == middleware.GetUserID(r) && !user.Role.IsAdmin() {
		form.ErrorField = "role"
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, i18n.T(lang, "users.cannot_demote_self"))
		return
	}

	if err := h.api.UpdateUser(ctx, id, model.UserUpdate{Name: user.Name, Role: user.Role.Label()}); err != nil {
		slog.ErrorContext(ctx, "updating user", "user_id", id, "error", err)
		h.renderForm(w, r, http.StatusBadGateway, form, apiclient.MessageOf(err, i18n.T(lang, "msg.backend_error")))
		return
	}

	slog.InfoContext(ctx, "user updated", "user_id", id, "role", user.Role.Label(), "updated_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, pageURL(RouteUsers, page), i18n.T(lang, "users.updated", user.Name))
}

// Delete handles DELETE /admin/users/{id} and its POST form twin. Admins
// cannot delete their own account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectUsers) {
		return
	}
	id := chi.URLParam(r, "id")
	page := formPage(r)
	if id == "" {
		flashError(w, r, h.renderer, redirectUsers, i18n.T(lang, "msg.not_found"))
		return
	}
	if id == middleware.GetUserID(r) {
		flashError(w, r, h.renderer, pageURL(RouteUsers, page), i18n.T(lang, "users.cannot_delete_self"))
		return
	}

	next, err := deleteFromPage(r.Context(), userStore(h.api), page, func(ctx context.Context) error {
		return h.api.DeleteUser(ctx, id)
	})
	if err != nil {
		backendError(w, r, h.renderer, pageURL(RouteUsers, page), "failed to delete user", err, "user_id", id)
		return
	}

	slog.InfoContext(r.Context(), "user deleted", "user_id", id, "deleted_by", middleware.GetUserID(r))
	flashSuccess(w, r, h.renderer, pageURL(RouteUsers, next), i18n.T(lang, "msg.deleted", i18n.T(lang, "entity.user")))
}

func (h *UsersHandler) find(ctx context.Context, id string, page int) (model.CMSUser, error) {
	store := userStore(h.api)
	if _, err := store.List(ctx, model.Pagination{Page: page}); err != nil {
		return model.CMSUser{}, err
	}
	for _, u := range store.Items() {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return model.CMSUser{}, &apiclient.APIError{Status: http.StatusNotFound}
}

func (h *UsersHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form UserFormData, flash string) {
	lang := middleware.GetLang(r)
	title := "page.edit_user"
	if form.IsNew {
		title = "page.new_user"
	}
	form.Roles = userRoles
	td := render.TemplateData{Title: i18n.T(lang, title), Nav: "users", Data: form}
	if flash != "" {
		td.Flash = flash
		td.FlashType = render.FlashError
	}
	if err := h.renderer.RenderStatus(w, r, status, tmplUserForm, td); err != nil {
		logAndInternalError(w, r, "rendering user form", "error", err)
	}
}

func userFromForm(r *http.Request) model.CMSUser {
	return model.CMSUser{
		Name:  strings.TrimSpace(r.FormValue("name")),
		Email: strings.TrimSpace(r.FormValue("email")),
		Role:  model.Role(strings.TrimSpace(r.FormValue("role"))),
	}
}

// validateUser returns the first invalid field, or "".
func validateUser(u model.CMSUser, withEmail bool) string {
	if u.Name == "" {
		return "name"
	}
	if withEmail {
		if _, err := mail.ParseAddress(u.Email); err != nil || u.Email == "" {
			return "email"
		}
	}
	if u.Role.ID() == 0 {
		return "role"
	}
	return ""
}

func generatePassword() (string, error) {
	b := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func userURL(id string) string {
	return RouteUsers + "/" + url.PathEscape(id)
}
