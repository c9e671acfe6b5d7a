package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/simaogato/networth-backend/internal/domain"
)

// BatchFunc is a multi-item operation that keeps going past individual failures
type BatchFunc func(ctx context.Context) (*domain.BatchResult, error)

// BatchJob adapts a batch operation to a Job, logging its summary
type BatchJob struct {
	name string
	verb string
	noun string
	run  BatchFunc
	log  zerolog.Logger
}

// NewBatchJob creates a job named name; verb and noun phrase its summary line
func NewBatchJob(name, verb, noun string, run BatchFunc, log zerolog.Logger) *BatchJob {
	return &BatchJob{
		name: name,
		verb: verb,
		noun: noun,
		run:  run,
		log:  log.With().Str("job", name).Logger(),
	}
}

// Name returns the job name
func (j *BatchJob) Name() string {
	return j.name
}

// Run executes the batch. Item failures are logged, not returned.
func (j *BatchJob) Run(ctx context.Context) error {
	result, err := j.run(ctx)
	if err != nil {
		return err
	}

	event := j.log.Info()
	if result.HasErrors() {
		event = j.log.Warn().Strs("errors", result.Errors)
	}
	event.Int("succeeded", result.Succeeded).Msg(result.Message(j.verb, j.noun))
	return nil
}
