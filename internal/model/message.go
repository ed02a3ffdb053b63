// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Subscriber is a newsletter subscriber.
type Subscriber struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	EmailAddress   string `json:"email_address"`
	DateSubscribed string `json:"date_subscribed"`
	IsActive       bool   `json:"is_active"`
}

// Recipients returns the subscribers a newsletter would reach: the selected
// ids when any are given, otherwise every active subscriber.
func Recipients(subs []Subscriber, selected []int64) []Subscriber {
	var out []Subscriber
	if len(selected) > 0 {
		want := make(map[int64]struct{}, len(selected))
		for _, id := range selected {
			want[id] = struct{}{}
		}
		for _, s := range subs {
			if _, ok := want[s.ID]; ok {
				out = append(out, s)
			}
		}
		return out
	}
	for _, s := range subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}
