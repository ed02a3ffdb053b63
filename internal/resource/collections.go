// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package resource

import (
	"github.com/solarhub/solar-admin/internal/model"
)

// Articles pages by limit/offset, 20 per page.
func Articles(list Lister[model.Article]) *Store[model.Article] {
	return NewStore(list, model.DefaultArticleLimit)
}

// Categories fetches every category in one page.
func Categories(list Lister[model.Category]) *Store[model.Category] {
	return NewStore(list, model.UnboundedCategoryCap)
}

// ContactMessages pages by page/limit, 10 per page.
func ContactMessages(list Lister[model.ContactMessage]) *Store[model.ContactMessage] {
	return NewStore(list, model.DefaultMessageLimit)
}

// Subscribers lists newsletter subscribers.
func Subscribers(list Lister[model.Subscriber]) *Store[model.Subscriber] {
	return NewStore(list, model.DefaultListLimit)
}

// Users lists CMS accounts.
func Users(list Lister[model.CMSUser]) *Store[model.CMSUser] {
	return NewStore(list, model.DefaultListLimit)
}
