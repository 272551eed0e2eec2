package daemon

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// leadDuration is how long before a scheduled run OnUpcoming is called.
const leadDuration = time.Second * 10

type NotifyFunc func(data any)

// TaskFunc represents a runnable task.
type TaskFunc func() error

// Scheduler runs Task on a cron schedule. When PreCheck fails the run is
// skipped and OnError is called with the precheck error.
type Scheduler struct {
	OnUpcoming NotifyFunc // called before running the task
	OnError    NotifyFunc // called on precheck or task error
	Task       TaskFunc   // task callback
	PreCheck   TaskFunc   // condition check callback

	parser cron.Parser

	expr     string
	schedule cron.Schedule
	nextRun  time.Time

	mu      sync.Mutex
	running bool

	controlCh chan controlMsg
	stopCh    chan struct{}
}

// internal control kinds (not user visible events)
type controlKind int

const (
	ctrlRecalculate controlKind = iota // timer needs recalculation due to schedule change
	ctrlSkip                           // next run skipped
)

type controlMsg struct {
	kind controlKind
}

func NewScheduler(task, preCheck TaskFunc, onUpcoming, onError NotifyFunc) *Scheduler {
	if task == nil {
		panic("task function cannot be nil")
	}

	return &Scheduler{
		OnUpcoming: onUpcoming,
		OnError:    onError,
		Task:       task,
		PreCheck:   preCheck,
		parser:     cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		controlCh:  make(chan controlMsg, 4),
		stopCh:     make(chan struct{}),
	}
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopCh: // already closed
	default:
		close(s.stopCh)
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.runScheduled()
}

// Schedule replaces the schedule. An empty expression disables it.
func (s *Scheduler) Schedule(cronExpr string) error {
	var sh cron.Schedule
	if cronExpr != "" {
		var err error
		sh, err = s.parser.Parse(cronExpr)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.expr = cronExpr
	s.schedule = sh
	s.nextRun = time.Time{}
	if sh != nil {
		s.nextRun = sh.Next(time.Now())
	}
	running := s.running
	s.mu.Unlock()

	if running {
		s.trySendControl(ctrlRecalculate)
	}
	return nil
}

// Skip skips the next scheduled run.
func (s *Scheduler) Skip() error {
	s.mu.Lock()
	if s.schedule == nil || s.nextRun.IsZero() {
		s.mu.Unlock()
		return fmt.Errorf("no active schedule to skip")
	}
	s.nextRun = s.schedule.Next(s.nextRun)
	running := s.running
	s.mu.Unlock()

	if running {
		s.trySendControl(ctrlSkip)
	}
	return nil
}

// Status returns the schedule expression, the next run time (zero when
// disabled) and whether the scheduler loop is running.
func (s *Scheduler) Status() (expr string, nextRun time.Time, running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.expr, s.nextRun, s.running
}

func (s *Scheduler) runScheduled() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logrus.Debug("scheduler stopped")
	}()

	logrus.Debug("scheduler started")

	for {
		leading := true

		schedule, nextRun := s.snapshot()
		var timer *time.Timer
		if schedule == nil || nextRun.IsZero() {
			timer = time.NewTimer(time.Hour * 10000)
		} else {
			wait := time.Until(nextRun) - leadDuration
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
		}

	wait:
		for {
			select {
			case <-timer.C:
				if schedule == nil || nextRun.IsZero() {
					break wait
				}

				if leading {
					logrus.Debugf("upcoming scheduled task at %s", nextRun.Format(time.DateTime))
					leading = false
					runWait := time.Until(nextRun)
					if runWait < 0 {
						runWait = 0
					}
					timer.Reset(runWait)
					s.sendNotify(nextRun)
					continue
				}

				logrus.Debugf("running scheduled task at %s", nextRun.Format(time.DateTime))

				if s.PreCheck != nil {
					if err := s.PreCheck(); err != nil {
						logrus.Debugf("precheck failed, skipping run: %v", err)
						s.sendError(fmt.Errorf("precheck failed: %w", err))
						s.advanceNextRun()
						break wait
					}
				}

				go func() {
					if err := s.Task(); err != nil {
						s.sendError(fmt.Errorf("task failed: %w", err))
					}
				}()
				s.advanceNextRun()
				break wait
			case <-s.stopCh:
				timer.Stop()
				return
			case msg := <-s.controlCh: // internal control messages
				logrus.WithField("kind", msg.kind).Debug("received control msg")
				timer.Stop()
				break wait
			}
		}
	}
}

func (s *Scheduler) snapshot() (cron.Schedule, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule, s.nextRun
}

func (s *Scheduler) advanceNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return
	}
	// Catch up instead of firing repeatedly after a long stall.
	next := s.schedule.Next(s.nextRun)
	if now := time.Now(); next.Before(now) {
		next = s.schedule.Next(now)
	}
	s.nextRun = next
}

func (s *Scheduler) sendNotify(runAt time.Time) {
	if s.OnUpcoming == nil {
		return
	}

	go s.OnUpcoming(runAt)
}

func (s *Scheduler) sendError(err error) {
	if s.OnError == nil {
		return
	}

	go s.OnError(err)
}

func (s *Scheduler) trySendControl(kind controlKind) {
	select {
	case s.controlCh <- controlMsg{kind: kind}:
	default:
	}
}
