// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package audit describes where a sign-in came from. The description is
// logged and kept in the session so the dashboard can show it.
package audit

import (
	"log/slog"
	"time"

	"github.com/mileusna/useragent"
)

// SignIn describes one sign-in.
type SignIn struct {
	At      time.Time `json:"at"`
	IP      string    `json:"ip"`
	Country string    `json:"country,omitempty"`
	Browser string    `json:"browser"`
	OS      string    `json:"os"`
	Device  string    `json:"device"`
}

// Recorder builds SignIn descriptions.
type Recorder struct {
	geo    *GeoIP
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder. geo may be nil.
func NewRecorder(geo *GeoIP, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{geo: geo, logger: logger, now: time.Now}
}

// Describe parses the user agent and resolves the country of ip.
func (r *Recorder) Describe(ip, userAgent string) SignIn {
	ua := useragent.Parse(userAgent)

	s := SignIn{
		At:      r.now().UTC(),
		IP:      ip,
		Browser: ua.Name,
		OS:      ua.OS,
		Device:  deviceType(ua),
	}
	if s.Browser == "" {
		s.Browser = "Unknown"
	}
	if s.OS == "" {
		s.OS = "Unknown"
	}
	if r.geo != nil {
		s.Country = r.geo.Country(ip)
	}
	return s
}

// Success logs a successful sign-in and returns its description.
func (r *Recorder) Success(userID, ip, userAgent string) SignIn {
	s := r.Describe(ip, userAgent)
	r.logger.Info("user signed in",
		"user_id", userID,
		"ip", s.IP,
		"country", s.Country,
		"browser", s.Browser,
		"os", s.OS,
		"device", s.Device,
	)
	return s
}

// Failure logs a rejected sign-in.
func (r *Recorder) Failure(identifier, ip, userAgent, reason string) {
	s := r.Describe(ip, userAgent)
	r.logger.Warn("sign-in failed",
		"email", identifier,
		"ip", s.IP,
		"country", s.Country,
		"browser", s.Browser,
		"reason", reason,
	)
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Bot:
		return "bot"
	default:
		return "desktop"
	}
}
