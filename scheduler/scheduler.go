package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"seo_auditor/audit"
	"seo_auditor/config"
	"seo_auditor/storage"
)

// Triggerable allows workers to be kicked outside their regular interval.
type Triggerable interface {
	Trigger()
}

// Scheduler re-audits every project on a cron expression or fixed interval.
type Scheduler struct {
	cfg          config.SchedulerConfig
	store        storage.Store
	orchestrator *audit.Orchestrator
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}

	perfWorker Triggerable
}

func New(cfg config.SchedulerConfig, store storage.Store, orchestrator *audit.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		store:        store,
		orchestrator: orchestrator,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

// SetWorkers registers background workers to trigger after scheduled runs.
func (s *Scheduler) SetWorkers(perf Triggerable) {
	s.perfWorker = perf
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("scheduler: cron %q", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.runAll(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		log.Printf("scheduler: interval %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runAll(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("scheduler: no schedule configured, audits run on request only")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// runAll audits every project in sequence. One failed project does not stop
// the rest.
func (s *Scheduler) runAll(ctx context.Context) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		log.Printf("scheduler: list projects: %v", err)
		return
	}
	if len(projects) == 0 {
		return
	}

	log.Printf("scheduler: auditing %d projects", len(projects))
	for _, p := range projects {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.orchestrator.Run(ctx, p.ID); err != nil {
			log.Printf("scheduler: project %d (%s): %v", p.ID, p.Domain, err)
		}
	}

	if s.perfWorker != nil {
		s.perfWorker.Trigger()
	}
}

// TriggerNow runs a full audit cycle outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) {
	s.runAll(ctx)
}
