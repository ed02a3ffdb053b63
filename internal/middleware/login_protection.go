// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/solarhub/solar-admin/internal/i18n"
)

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// LoginProtection combines per-address rate limiting on the login form with
// lockout of identifiers that keep failing. The backend may enforce its own
// limits; these apply before a request reaches it.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration // doubles with each lockout
	attemptWindow     time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64 // requests per second per address
	IPBurst           int
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	AttemptWindow     time.Duration
}

// DefaultLoginProtectionConfig returns 0.5 req/s with a burst of 5, and a
// 15 minute lockout after 5 failures within 15 minutes.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a LoginProtection and starts its cleanup loop.
// Zero config values take the defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go lp.cleanup(10 * time.Minute)
	return lp
}

// Stop ends the cleanup loop.
func (lp *LoginProtection) Stop() {
	lp.once.Do(func() { close(lp.stop) })
}

func identifierKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// CheckIPRateLimit reports whether a login attempt from ip may proceed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsAccountLocked reports whether identifier is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(identifier string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, ok := lp.failedAttempts[identifierKey(identifier)]
	var until time.Time
	if ok {
		until = attempt.lockedUntil
	}
	lp.attemptsMu.RUnlock()

	now := lp.now()
	if ok && now.Before(until) {
		return true, until.Sub(now)
	}
	return false, 0
}

// RecordFailedAttempt counts a failure and reports whether it locked the
// identifier, and for how long.
func (lp *LoginProtection) RecordFailedAttempt(identifier string) (bool, time.Duration) {
	key := identifierKey(identifier)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := lp.now()
	attempt, ok := lp.failedAttempts[key]
	if !ok || now.Sub(attempt.firstFailed) > lp.attemptWindow {
		if !ok {
			attempt = &loginAttempt{}
			lp.failedAttempts[key] = attempt
		}
		attempt.count = 1
		attempt.firstFailed = now
	} else {
		attempt.count++
	}

	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	lock := lp.lockoutDuration
	for i := 0; i < attempt.lockouts && lock < maxLockout; i++ {
		lock *= 2
	}
	if lock > maxLockout {
		lock = maxLockout
	}

	attempt.lockedUntil = now.Add(lock)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("account locked due to failed attempts",
		"email", key,
		"lockouts", attempt.lockouts,
		"duration", lock,
	)
	return true, lock
}

// RecordSuccessfulLogin forgets the failures of identifier.
func (lp *LoginProtection) RecordSuccessfulLogin(identifier string) {
	lp.attemptsMu.Lock()
	delete(lp.failedAttempts, identifierKey(identifier))
	lp.attemptsMu.Unlock()
}

// RemainingAttempts returns how many failures identifier has left before a
// lockout.
func (lp *LoginProtection) RemainingAttempts(identifier string) int {
	lp.attemptsMu.RLock()
	attempt, ok := lp.failedAttempts[identifierKey(identifier)]
	var count int
	var first time.Time
	if ok {
		count, first = attempt.count, attempt.firstFailed
	}
	lp.attemptsMu.RUnlock()

	if !ok || lp.now().Sub(first) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-count, 0)
}

func (lp *LoginProtection) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}

	now := lp.now()
	lp.attemptsMu.Lock()
	for key, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, key)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits POST requests per client address.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := ClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				http.Error(w, i18n.T(GetLang(r), "error.rate_limited"), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
