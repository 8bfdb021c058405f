package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/sitewatch/internal/config"
	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// monitorJob wraps a site and the WaitGroup of the cycle it belongs to.
type monitorJob struct {
	Site    models.Site
	CycleWG *sync.WaitGroup
}

// Scheduler runs monitoring cycles on a fixed interval or a cron schedule.
type Scheduler struct {
	service         *MonitoringService
	tracker         *CycleTracker
	logger          zerolog.Logger
	workers         int
	interval        time.Duration
	minDelay        time.Duration
	shutdownTimeout time.Duration
	schedule        cron.Schedule

	lastCheckedMutex sync.Mutex
	lastChecked      map[string]time.Time
	now              func() time.Time
}

// NewScheduler creates a scheduler. maxCycles 0 means run until cancelled.
func NewScheduler(cfg config.MonitorConfig, maxCycles int, service *MonitoringService, logger zerolog.Logger) (*Scheduler, error) {
	logger = logger.With().Str("component", "MonitorScheduler").Logger()

	var schedule cron.Schedule
	if cfg.CronSchedule != "" {
		parsed, err := config.ParseCronSchedule(cfg.CronSchedule)
		if err != nil {
			return nil, err
		}
		schedule = parsed
	}

	workers := cfg.MaxConcurrentChecks
	if workers <= 0 {
		logger.Warn().Int("configured_workers", workers).Msg("MaxConcurrentChecks is not configured or invalid, defaulting to 1 worker.")
		workers = 1
	}

	return &Scheduler{
		service:         service,
		tracker:         NewCycleTracker(maxCycles),
		logger:          logger,
		workers:         workers,
		interval:        cfg.CheckInterval(),
		minDelay:        cfg.MinDelay(),
		shutdownTimeout: cfg.ShutdownTimeout(),
		schedule:        schedule,
		lastChecked:     make(map[string]time.Time),
		now:             time.Now,
	}, nil
}

// Tracker exposes the cycle tracker.
func (s *Scheduler) Tracker() *CycleTracker {
	return s.tracker
}

// Run performs a cycle immediately and then one per tick until ctx is
// cancelled or the cycle limit is reached. In-flight checks are not
// cancelled; Run waits up to the shutdown timeout for them.
func (s *Scheduler) Run(ctx context.Context) error {
	jobs := make(chan monitorJob, s.workers)
	var workersWG sync.WaitGroup

	// Checks are detached from ctx; probe and remote timeouts bound them.
	workCtx := context.WithoutCancel(ctx)

	s.logger.Info().Int("num_workers", s.workers).Msg("Starting monitor workers")
	for i := 0; i < s.workers; i++ {
		workersWG.Add(1)
		go s.worker(workCtx, i, jobs, &workersWG)
	}

	defer s.shutdown(jobs, &workersWG)

	trigger, stop := s.newTrigger()
	defer stop()

	for {
		if !s.runCycle(ctx, jobs) {
			return nil
		}
		if !s.tracker.ShouldContinue() {
			s.logger.Info().Int("cycles", s.tracker.CycleCount()).Msg("Cycle limit reached, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("MonitorScheduler context cancelled, main loop stopping.")
			return nil
		case <-trigger():
		}
	}
}

// newTrigger returns a function yielding the channel of the next tick.
func (s *Scheduler) newTrigger() (func() <-chan time.Time, func()) {
	if s.schedule != nil {
		s.logger.Info().Msg("Using cron schedule")
		var timer *time.Timer
		next := func() <-chan time.Time {
			now := s.now()
			wait := s.schedule.Next(now).Sub(now)
			if wait < 0 {
				wait = 0
			}
			s.logger.Debug().Dur("wait", wait).Msg("Next cycle scheduled")
			timer = time.NewTimer(wait)
			return timer.C
		}
		stop := func() {
			if timer != nil {
				timer.Stop()
			}
		}
		return next, stop
	}

	s.logger.Info().Dur("interval", s.interval).Msg("Using fixed check interval")
	ticker := time.NewTicker(s.interval)
	next := func() <-chan time.Time {
		// A tick buffered while the previous cycle ran is dropped.
		select {
		case <-ticker.C:
		default:
		}
		return ticker.C
	}
	return next, ticker.Stop
}

// runCycle dispatches every due site and waits for the cycle to finish.
// It returns false when ctx was cancelled before the cycle completed.
func (s *Scheduler) runCycle(ctx context.Context, jobs chan<- monitorJob) bool {
	cycleID := s.tracker.StartCycle()
	sites := s.service.Sites()
	log := s.logger.With().Str("cycle_id", cycleID).Logger()
	log.Info().Int("sites", len(sites)).Msg("Monitor cycle started")

	var cycleWG sync.WaitGroup
	cancelled := false

dispatch:
	for _, site := range sites {
		if !s.markDue(site) {
			s.tracker.RecordSkip()
			log.Debug().Str("site", site.Name).Msg("Site checked too recently, skipping")
			continue
		}

		cycleWG.Add(1)
		select {
		case jobs <- monitorJob{Site: site, CycleWG: &cycleWG}:
		case <-ctx.Done():
			cycleWG.Done()
			cancelled = true
			break dispatch
		}
	}

	done := make(chan struct{})
	go func() {
		cycleWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Info().Msg("Context cancelled during monitor cycle, waiting for in-flight checks on shutdown")
		return false
	}

	summary := s.tracker.EndCycle()
	s.service.metrics.ObserveCycle(summary.Duration)
	log.Info().
		Int("checked", summary.Checked).
		Int("skipped", summary.Skipped).
		Int("failed", len(summary.Failures)).
		Interface("outcomes", summary.Outcomes).
		Dur("duration", summary.Duration).
		Msg("Monitor cycle completed")

	return !cancelled
}

// markDue reports whether site may be checked now and, if so, records the check.
func (s *Scheduler) markDue(site models.Site) bool {
	s.lastCheckedMutex.Lock()
	defer s.lastCheckedMutex.Unlock()

	now := s.now()
	id := site.ID()
	if last, ok := s.lastChecked[id]; ok && s.minDelay > 0 && now.Sub(last) < s.minDelay {
		return false
	}
	s.lastChecked[id] = now
	return true
}

// worker is a goroutine that listens on jobs for sites to check.
func (s *Scheduler) worker(ctx context.Context, id int, jobs <-chan monitorJob, wg *sync.WaitGroup) {
	defer wg.Done()
	s.logger.Debug().Int("worker_id", id).Msg("Monitoring worker started")
	for job := range jobs {
		result := s.service.checkSite(ctx, job.Site)
		s.tracker.RecordResult(result)
		job.CycleWG.Done()
	}
	s.logger.Debug().Int("worker_id", id).Msg("Monitoring worker stopped as channel closed.")
}

func (s *Scheduler) shutdown(jobs chan monitorJob, workersWG *sync.WaitGroup) {
	close(jobs)

	done := make(chan struct{})
	go func() {
		workersWG.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info().Msg("MonitorScheduler main loop and workers stopped.")
	case <-timer.C:
		s.logger.Warn().Dur("timeout", s.shutdownTimeout).Msg("MonitorScheduler did not stop gracefully within the timeout.")
	}
}
