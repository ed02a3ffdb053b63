// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithHeaders(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS bool
	}{
		{"production enables HSTS", false, true},
		{"development disables HSTS", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithHeaders(DefaultSecurityHeadersConfig(tt.isDev, ""))

			hsts := rec.Header().Get("Strict-Transport-Security")
			if tt.wantHSTS != (hsts != "") {
				t.Errorf("HSTS = %q, want present=%v", hsts, tt.wantHSTS)
			}
			if tt.wantHSTS && !strings.Contains(hsts, "includeSubDomains") {
				t.Errorf("HSTS = %q, want includeSubDomains", hsts)
			}
			if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
				t.Errorf("X-Frame-Options = %q, want DENY", got)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if rec.Header().Get("Referrer-Policy") == "" || rec.Header().Get("Permissions-Policy") == "" {
				t.Error("missing referrer or permissions policy")
			}
		})
	}
}

func TestDefaultSecurityHeadersConfig_BackendImages(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false, "https://api.example.org")

	if !strings.Contains(cfg.ContentSecurityPolicy, "img-src 'self' data: blob: https://api.example.org") {
		t.Errorf("CSP = %q, want backend origin in img-src", cfg.ContentSecurityPolicy)
	}
	if !strings.HasPrefix(cfg.ContentSecurityPolicy, "default-src 'self'; script-src 'self'") {
		t.Errorf("CSP order = %q", cfg.ContentSecurityPolicy)
	}
}

func TestBuildCSP_UnknownDirectivesSorted(t *testing.T) {
	csp := buildCSP(map[string]string{
		"default-src":     "'self'",
		"worker-src":      "'none'",
		"manifest-src":    "'self'",
		"upgrade-request": "",
	})

	want := "default-src 'self'; manifest-src 'self'; upgrade-request ; worker-src 'none'"
	if csp != want {
		t.Errorf("buildCSP() = %q, want %q", csp, want)
	}
}

func TestBuildPermissionsPolicy_Sorted(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "camera": "()"})
	if got != "camera=(), usb=()" {
		t.Errorf("buildPermissionsPolicy() = %q", got)
	}
}
