package scheduler

import "errors"

var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobNotFound         = errors.New("scheduler: no such job")
	// ErrJobAlreadyRunning means the previous run of the job has not returned yet
	ErrJobAlreadyRunning = errors.New("scheduler: job still running")
	ErrInvalidConfig     = errors.New("scheduler: invalid configuration")
)
