// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solarhub/solar-admin/internal/testutil"
)

type fakeSweeper struct {
	ttl     time.Duration
	removed int
}

func (f *fakeSweeper) Sweep(ttl time.Duration) int {
	f.ttl = ttl
	return f.removed
}

func TestScheduler_AddAndTrigger(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	runs := 0
	if err := s.Add("count", "*/5 * * * *", func(context.Context) error {
		runs++
		return nil
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := s.Trigger("count"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestScheduler_AddRejectsDuplicatesAndBadSpec(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	noop := func(context.Context) error { return nil }

	if err := s.Add("a", "@every 1m", noop); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add("a", "@every 1m", noop); err == nil {
		t.Error("expected duplicate error")
	}
	if err := s.Add("b", "not a schedule", noop); err == nil {
		t.Error("expected parse error")
	}
}

func TestScheduler_TriggerUnknown(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	if err := s.Trigger("missing"); err == nil {
		t.Error("expected error for unknown job")
	}
}

func TestScheduler_FailingJobIsLogged(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	_ = s.Add("fail", "@hourly", func(context.Context) error { return errors.New("boom") })

	if err := s.Trigger("fail"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
}

func TestScheduler_JobsSortedWithNextRun(t *testing.T) {
	s := New(testutil.TestLoggerSilent())
	noop := func(context.Context) error { return nil }
	_ = s.Add("zeta", "@every 1h", noop)
	_ = s.Add("alpha", "@every 1h", noop)

	s.Start()
	defer s.Stop()

	jobs := s.Jobs()
	if len(jobs) != 2 || jobs[0].Name != "alpha" || jobs[1].Name != "zeta" {
		t.Fatalf("Jobs() = %+v", jobs)
	}
	if jobs[0].NextRun.IsZero() {
		t.Error("started job should have a next run")
	}
}

func TestSweepWorkflowsJob(t *testing.T) {
	sw := &fakeSweeper{removed: 2}
	job := SweepWorkflowsJob(sw, 2*time.Hour, testutil.TestLoggerSilent())

	if err := job(context.Background()); err != nil {
		t.Fatalf("job error = %v", err)
	}
	if sw.ttl != 2*time.Hour {
		t.Errorf("ttl = %v", sw.ttl)
	}
}
