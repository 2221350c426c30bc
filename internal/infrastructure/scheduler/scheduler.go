// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of periodic work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                  { return j.JobName }
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// JobRecord is the bookkeeping of a registered job
type JobRecord struct {
	Name        string     `json:"name"`
	Spec        string     `json:"spec"`
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
	Runs        int        `json:"runs"`
}

// Config holds scheduler configuration
type Config struct {
	Enabled bool
	// JobTimeout bounds a single run
	JobTimeout time.Duration
	Location   *time.Location
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSpec validates a cron expression. Five fields, an optional leading
// seconds field and descriptors such as "@every 10m" are accepted.
func ParseSpec(spec string) (cron.Schedule, error) {
	s, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, spec, err)
	}
	return s, nil
}

type registered struct {
	job     Job
	entryID cron.EntryID
	record  JobRecord
	running bool
}

// Scheduler runs registered jobs on their cron schedules. Runs of the same
// job never overlap; a tick that arrives while the previous run is still in
// progress is skipped.
type Scheduler struct {
	config Config
	cron   *cron.Cron
	logger *zap.Logger

	mu        sync.Mutex
	jobs      map[string]*registered
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// New creates a scheduler
func New(config Config, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = 2 * time.Minute
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		cron:   cron.New(cron.WithLocation(config.Location), cron.WithParser(cronParser)),
		logger: logger.With(zap.String("component", "scheduler")),
		jobs:   make(map[string]*registered),
	}
}

// Register adds a job under a cron spec. Registering the same name twice replaces the schedule.
func (s *Scheduler) Register(spec string, job Job) error {
	if _, err := ParseSpec(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.jobs[job.Name()]; ok {
		s.cron.Remove(prev.entryID)
	}
	name := job.Name()
	id, err := s.cron.AddFunc(spec, func() { s.runScheduled(name) })
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.jobs[name] = &registered{
		job:     job,
		entryID: id,
		record:  JobRecord{Name: name, Spec: spec, Status: JobStatusPending},
	}
	return nil
}

// Start begins firing jobs. It is a no-op when the scheduler is disabled or already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop stops firing jobs and waits for running ones to finish or for ctx to end
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Trigger runs a job immediately and waits for it
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()
	return s.run(ctx, name)
}

// RunNow runs a job immediately regardless of the scheduler state.
// Used to warm caches at startup.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	return s.run(ctx, name)
}

// Records returns a snapshot of every job's bookkeeping
func (s *Scheduler) Records() []JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobRecord, 0, len(s.jobs))
	for _, r := range s.jobs {
		rec := r.record
		if s.isRunning {
			if next := s.cron.Entry(r.entryID).Next; !next.IsZero() {
				rec.NextRunAt = &next
			}
		}
		out = append(out, rec)
	}
	return out
}

func (s *Scheduler) runScheduled(name string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	err := s.run(ctx, name)
	if errors.Is(err, ErrJobAlreadyRunning) {
		s.logger.Warn("Skipping tick, previous run still in progress", zap.String("job", name))
	}
}

func (s *Scheduler) run(ctx context.Context, name string) (err error) {
	s.mu.Lock()
	r, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if r.running {
		s.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	r.running = true
	started := time.Now()
	r.record.Status = JobStatusRunning
	r.record.LastRunAt = &started
	r.record.Error = ""
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", name, p)
		}
		s.finish(r, started, err)
	}()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	return r.job.Run(jobCtx)
}

func (s *Scheduler) finish(r *registered, started time.Time, err error) {
	completed := time.Now()

	s.mu.Lock()
	r.running = false
	r.record.Runs++
	r.record.CompletedAt = &completed
	if err != nil {
		r.record.Status = JobStatusFailed
		r.record.Error = err.Error()
	} else {
		r.record.Status = JobStatusSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed",
			zap.String("job", r.record.Name),
			zap.Duration("duration", completed.Sub(started)),
			zap.Error(err))
		return
	}
	s.logger.Debug("Job completed",
		zap.String("job", r.record.Name),
		zap.Duration("duration", completed.Sub(started)))
}
