// File: /jobs/scheduler.go
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// SweepFunc evicts stale state and reports how many entries it removed.
type SweepFunc func() int

type sweepJob struct {
	name  string
	sweep SweepFunc
}

// Scheduler runs the periodic limiter sweeps.
type Scheduler struct {
	cron     *cron.Cron
	schedule string

	mu   sync.Mutex
	jobs []sweepJob
}

// NewScheduler takes a standard cron expression or a descriptor like "@every 5m".
func NewScheduler(schedule string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
	}, nil
}

// Add registers a sweep. Must be called before Start.
func (s *Scheduler) Add(name string, sweep SweepFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, sweepJob{name: name, sweep: sweep})
}

// RunOnce runs every registered sweep immediately.
func (s *Scheduler) RunOnce() map[string]int {
	s.mu.Lock()
	jobs := append([]sweepJob(nil), s.jobs...)
	s.mu.Unlock()

	removed := make(map[string]int, len(jobs))
	for _, job := range jobs {
		n := s.run(job)
		removed[job.name] = n
	}
	return removed
}

func (s *Scheduler) run(job sweepJob) (n int) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"job": job.name, "panic": r}).Error("[CRON] sweep panicked")
			n = 0
		}
	}()

	n = job.sweep()
	if n > 0 {
		log.WithFields(log.Fields{"job": job.name, "removed": n}).Debug("[CRON] sweep finished")
	}
	return n
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("Sweep scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Sweep scheduler stopped")
}
