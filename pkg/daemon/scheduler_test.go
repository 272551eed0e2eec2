package daemon

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestCronParse(t *testing.T) {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for _, expr := range []string{"@every 10m", "0 */5 * * * *", "*/15 * * * *", "@hourly"} {
		schedule, err := parser.Parse(expr)
		if err != nil {
			t.Fatalf("failed to parse cron expression %q: %v", expr, err)
		}

		next1 := schedule.Next(time.Now())
		next2 := schedule.Next(next1)
		if !next2.After(next1) {
			t.Fatalf("%q: expected next2 to be after next1, got next1=%v next2=%v", expr, next1, next2)
		}
	}
}

func TestSchedulerScheduleStatus(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil, nil, nil)

	if err := s.Schedule("@every 1m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	expr, next, running := s.Status()
	if running {
		t.Fatalf("scheduler should not be running")
	}
	if expr != "@every 1m" {
		t.Fatalf("unexpected schedule expression %q", expr)
	}
	if next.IsZero() {
		t.Fatalf("next run should be set after scheduling")
	}

	if err := s.Schedule(""); err != nil {
		t.Fatalf("clearing the schedule returned error: %v", err)
	}
	if _, next, _ := s.Status(); !next.IsZero() {
		t.Fatalf("expected no next run once disabled, got %v", next)
	}
}

func TestSchedulerInvalidExpression(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil, nil, nil)
	if err := s.Schedule("every now and then"); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
	if err := s.Skip(); err == nil {
		t.Fatalf("expected skip to fail without a schedule")
	}
}

func TestSchedulerSkip(t *testing.T) {
	s := NewScheduler(func() error { return nil }, nil, nil, nil)
	if err := s.Schedule("@every 10m"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	_, orig, _ := s.Status()
	if orig.IsZero() {
		t.Fatalf("expected next run after scheduling")
	}

	s.Start()
	defer s.Stop()

	if err := s.Skip(); err != nil {
		t.Fatalf("Skip returned error: %v", err)
	}
	_, skipped, _ := s.Status()
	if !skipped.After(orig) {
		t.Fatalf("expected skip to move schedule forward, got %v <= %v", skipped, orig)
	}
}

func TestSchedulerRunCycle(t *testing.T) {
	notifyCh := make(chan time.Time, 1)
	taskCh := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	var preChecks int32

	task := func() error {
		select {
		case taskCh <- struct{}{}:
		default:
		}
		return nil
	}

	preCheck := func() error {
		atomic.AddInt32(&preChecks, 1)
		return nil
	}

	beforeRun := func(data any) {
		if at, ok := data.(time.Time); ok {
			select {
			case notifyCh <- at:
			default:
			}
		}
	}

	onError := func(data any) {
		if err, ok := data.(error); ok {
			errCh <- err
		}
	}

	s := NewScheduler(task, preCheck, beforeRun, onError)
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	forcedNext := time.Now().Add(50 * time.Millisecond)
	s.mu.Lock()
	s.nextRun = forcedNext
	s.mu.Unlock()

	s.Start()
	defer s.Stop()

	select {
	case at := <-notifyCh:
		if !at.Equal(forcedNext) {
			t.Fatalf("expected upcoming notification for %v, got %v", forcedNext, at)
		}
	case <-time.After(time.Second):
		t.Fatalf("did not receive before-run notification in time")
	}

	select {
	case <-taskCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("task did not execute in time")
	}

	if atomic.LoadInt32(&preChecks) == 0 {
		t.Fatalf("precheck should have been executed")
	}

	select {
	case err := <-errCh:
		t.Fatalf("unexpected error callback: %v", err)
	default:
	}
}

func TestSchedulerPreCheckFailure(t *testing.T) {
	taskCh := make(chan struct{}, 1)
	errCh := make(chan error, 4)

	task := func() error {
		taskCh <- struct{}{}
		return nil
	}

	preCheck := func() error {
		return errors.New("boom")
	}

	onError := func(data any) {
		if err, ok := data.(error); ok {
			select {
			case errCh <- err:
			default:
			}
		}
	}

	s := NewScheduler(task, preCheck, nil, onError)
	if err := s.Schedule("@every 1s"); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	s.mu.Lock()
	s.nextRun = time.Now().Add(50 * time.Millisecond)
	s.mu.Unlock()

	s.Start()
	defer s.Stop()

	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatalf("expected error callback from failed precheck")
	}

	select {
	case <-taskCh:
		t.Fatalf("task should not execute when precheck fails")
	default:
	}
}
