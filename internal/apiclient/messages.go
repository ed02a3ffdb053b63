// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/solarhub/solar-admin/internal/model"
)

func pageQuery(p model.Pagination) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(p.Page)},
		"limit": {strconv.Itoa(p.Limit)},
	}
}

// ListContactMessages returns one page of contact form submissions.
func (c *Client) ListContactMessages(ctx context.Context, p model.Pagination) (model.Page[model.ContactMessage], error) {
	p = p.Normalize(model.DefaultMessageLimit)
	respBody, err := c.send(ctx, http.MethodGet, "contact-messages", requestOptions{query: pageQuery(p)})
	if err != nil {
		return model.Page[model.ContactMessage]{}, err
	}
	return decodeList[model.ContactMessage](respBody, p, "messages")
}

// DeleteContactMessage removes a contact form submission.
func (c *Client) DeleteContactMessage(ctx context.Context, id int64) error {
	return c.deleteResource(ctx, "contact-messages/"+strconv.FormatInt(id, 10))
}

// ListSubscribers returns one page of newsletter subscribers.
func (c *Client) ListSubscribers(ctx context.Context, p model.Pagination) (model.Page[model.Subscriber], error) {
	p = p.Normalize(model.DefaultListLimit)
	respBody, err := c.send(ctx, http.MethodGet, "newsletter-subscribers", requestOptions{query: pageQuery(p)})
	if err != nil {
		return model.Page[model.Subscriber]{}, err
	}
	return decodeList[model.Subscriber](respBody, p, "subscribers")
}

// DeleteSubscriber removes a newsletter subscriber.
func (c *Client) DeleteSubscriber(ctx context.Context, id int64) error {
	return c.deleteResource(ctx, "newsletter-subscribers/"+strconv.FormatInt(id, 10))
}

// ListUsers returns the dashboard user accounts.
func (c *Client) ListUsers(ctx context.Context, p model.Pagination) (model.Page[model.CMSUser], error) {
	p = p.Normalize(model.DefaultListLimit)
	respBody, err := c.send(ctx, http.MethodGet, "users", requestOptions{query: pageQuery(p)})
	if err != nil {
		return model.Page[model.CMSUser]{}, err
	}
	return decodeList[model.CMSUser](respBody, p, "users")
}

// UpdateUser changes a user's name and role.
func (c *Client) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) error {
	return c.doJSON(ctx, http.MethodPatch, "users/"+url.PathEscape(id), nil, upd, nil)
}
