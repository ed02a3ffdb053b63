// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes abandoned workflows.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

// SweepWorkflowsJob drops workflows idle for longer than ttl.
func SweepWorkflowsJob(sw Sweeper, ttl time.Duration, logger *slog.Logger) Job {
	return func(context.Context) error {
		if n := sw.Sweep(ttl); n > 0 {
			logger.Info("swept abandoned workflows", "count", n)
		}
		return nil
	}
}
