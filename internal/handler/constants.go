// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix of the form-friendly delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixStatus is the suffix of the workflow polling route.
	RouteSuffixStatus = "/status"
	// RouteSuffixConfirm is the suffix of the workflow confirm route.
	RouteSuffixConfirm = "/confirm"
	// RouteSuffixBack is the suffix of the workflow back route.
	RouteSuffixBack = "/back"
	// RouteSuffixCompose is the suffix of the newsletter compose route.
	RouteSuffixCompose = "/compose"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteLanguage = "/language"
	RouteHealth   = "/health"
	RouteStatic   = "/static/*"

	RouteAdmin = "/admin"

	RouteArticles   = RouteAdmin + "/articles"
	RouteArticlesID = RouteArticles + RouteParamID

	RouteCategories   = RouteAdmin + "/categories"
	RouteCategoriesID = RouteCategories + RouteParamID

	RouteWorkflows   = RouteAdmin + "/workflows"
	RouteWorkflowsID = RouteWorkflows + RouteParamID

	RouteMessages   = RouteAdmin + "/messages"
	RouteMessagesID = RouteMessages + RouteParamID

	RouteNewsletter   = RouteAdmin + "/newsletter"
	RouteNewsletterID = RouteNewsletter + RouteParamID

	RouteUsers   = RouteAdmin + "/users"
	RouteUsersID = RouteUsers + RouteParamID
)

// Redirect targets.
const (
	redirectLogin      = RouteLogin
	redirectAdmin      = RouteAdmin
	redirectArticles   = RouteArticles
	redirectCategories = RouteCategories
	redirectMessages   = RouteMessages
	redirectNewsletter = RouteNewsletter
	redirectUsers      = RouteUsers
)

// Session keys owned by handlers.
const (
	// SessionKeyLastSignIn holds the JSON audit.SignIn of the current login.
	SessionKeyLastSignIn = "last_signin"
)

// Template names.
const (
	tmplLogin          = "auth/login"
	tmplDashboard      = "admin/dashboard"
	tmplArticles       = "admin/articles"
	tmplArticleForm    = "admin/article_form"
	tmplCategories     = "admin/categories"
	tmplCategoryForm   = "admin/category_form"
	tmplConfirm        = "admin/workflow_confirm"
	tmplMessages       = "admin/messages"
	tmplMessage        = "admin/message"
	tmplNewsletter     = "admin/newsletter"
	tmplUsers          = "admin/users"
	tmplUserForm       = "admin/user_form"
	dashboardRecentMax = 5
)
