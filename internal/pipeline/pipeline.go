package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/datapull/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// report from previous steps.
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the report to modify.
	Do(ctx context.Context, report *model.PullReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// finally holds steps that run after steps, even on failure.
	finally []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:   make([]Step, 0),
		finally: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddSteps appends steps to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Finally registers a step that runs after the regular steps whether they
// succeeded or not. Its errors are logged but never returned.
func (p *Pipeline) Finally(step Step) {
	p.finally = append(p.finally, step)
}

// Execute runs all pipeline steps in sequence and returns the first error.
// The error is also recorded in the report. Cancellation is checked before
// each step; steps handle their own timeouts.
func (p *Pipeline) Execute(ctx context.Context, report *model.PullReport) error {
	p.logger.Debug("starting pipeline",
		"dataset", report.Dataset,
		"steps", p.StepNames(),
	)

	err := p.run(ctx, report)
	report.FinishedAt = time.Now()

	// Finally steps must run even after Ctrl-C.
	finalCtx := context.WithoutCancel(ctx)
	for _, step := range p.finally {
		if ferr := step.Do(finalCtx, report); ferr != nil {
			p.logger.Warn("final step failed",
				"step", step.Name(),
				"dataset", report.Dataset,
				"error", ferr,
			)
			continue
		}
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return err
}

func (p *Pipeline) run(ctx context.Context, report *model.PullReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.Fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"dataset", report.Dataset,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"dataset", report.Dataset,
				"error", err,
			)
			report.Fail(err)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"dataset", report.Dataset,
		)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order, final
// steps last.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps)+len(p.finally))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	for _, step := range p.finally {
		names = append(names, step.Name())
	}
	return names
}
