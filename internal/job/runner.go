package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"tarbackup/internal/logging"
)

var (
	// ErrDispatch reports a step whose command could not be started.
	ErrDispatch = errors.New("command could not be executed")
	// ErrExitStatus reports a step whose command ran and exited non-zero.
	ErrExitStatus = errors.New("command exited with non-zero status")
)

// StepResult records the outcome of one step.
type StepResult struct {
	Kind     Kind
	Command  string
	Started  time.Time
	Duration time.Duration
	// ExitCode is -1 when the command never started or was killed by a signal.
	ExitCode int
	Err      error
}

// Dispatched reports whether the command was started.
func (r StepResult) Dispatched() bool {
	return !errors.Is(r.Err, ErrDispatch)
}

// Result records the outcome of one queue.
type Result struct {
	Item     string
	Steps    []StepResult
	Duration time.Duration
	// Aborted is set when a dispatch failure, or a non-zero exit under the
	// strict policy, ended the queue.
	Aborted bool
	// Skipped counts the steps never attempted after an abort.
	Skipped int
}

// Err returns the error that aborted the queue, if any.
func (r Result) Err() error {
	if !r.Aborted || len(r.Steps) == 0 {
		return nil
	}
	return r.Steps[len(r.Steps)-1].Err
}

// Failed reports whether any step failed, even under the lenient policy.
func (r Result) Failed() bool {
	for _, step := range r.Steps {
		if step.Err != nil {
			return true
		}
	}
	return false
}

// Runner executes queues.
type Runner struct {
	logger *slog.Logger
	strict bool
}

// NewRunner constructs a Runner. With strict set, a non-zero exit status stops
// the rest of the queue.
func NewRunner(logger *slog.Logger, strict bool) *Runner {
	return &Runner{
		logger: logging.NewComponentLogger(logger, "runner"),
		strict: strict,
	}
}

// Run executes every step of q in order and returns per-step results. Failures
// are reported in the result and never returned as errors so that one item
// cannot affect another.
func (r *Runner) Run(ctx context.Context, q Queue) Result {
	ctx = logging.WithItem(ctx, q.Item)
	logger := logging.WithContext(ctx, r.logger)

	result := Result{Item: q.Item, Steps: make([]StepResult, 0, len(q.Steps))}
	start := time.Now()
	for idx, step := range q.Steps {
		res := r.runStep(ctx, step, q.ShowTime)
		result.Steps = append(result.Steps, res)
		if res.Err == nil {
			continue
		}
		if errors.Is(res.Err, ErrDispatch) || r.strict {
			result.Aborted = true
			result.Skipped = len(q.Steps) - idx - 1
			if result.Skipped > 0 {
				logger.Warn("remaining steps skipped",
					logging.String(logging.FieldEventType, "queue_aborted"),
					logging.String(logging.FieldStep, string(step.Kind)),
					logging.Int("skipped_steps", result.Skipped),
				)
			}
			break
		}
	}
	result.Duration = time.Since(start)
	return result
}

// RunScript runs a script-wide pre or post action outside any item queue.
// A failure is only reported in the result; it never stops the run.
func (r *Runner) RunScript(ctx context.Context, step Step) StepResult {
	return runCommand(ctx, logging.WithContext(ctx, r.logger), step)
}

// runStep runs one queued step and optionally reports its duration.
func (r *Runner) runStep(ctx context.Context, step Step, showTime bool) StepResult {
	logger := logging.WithContext(ctx, r.logger)
	res := runCommand(ctx, logger, step)
	if showTime {
		logger.Info("step took "+FormatDuration(res.Duration),
			logging.String(logging.FieldStep, string(step.Kind)),
		)
	}
	return res
}

// runCommand spawns one command, waits for it, and records how long it took.
// Output is streamed into the log: stdout at debug, stderr at info.
func runCommand(ctx context.Context, base *slog.Logger, step Step) StepResult {
	logger := base.With(
		logging.String(logging.FieldStep, string(step.Kind)),
		logging.String(logging.FieldCommand, step.Command.String()),
	)
	res := StepResult{Kind: step.Kind, Command: step.Command.String(), ExitCode: -1}

	stdout := logging.NewLineWriter(logger, slog.LevelDebug, "command output")
	stderr := logging.NewLineWriter(logger, slog.LevelInfo, "command stderr")
	cmd := exec.CommandContext(ctx, step.Command.Path, step.Command.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debug("executing command", logging.String(logging.FieldEventType, "step_start"))
	res.Started = time.Now()
	if err := cmd.Start(); err != nil {
		res.Duration = time.Since(res.Started)
		res.Err = fmt.Errorf("%w: %s: %v", ErrDispatch, step.Command.Path, err)
		logging.ErrorWithContext(logger, "could not execute command", "step_dispatch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the executable exists and is on PATH"),
		)
		return res
	}

	waitErr := cmd.Wait()
	res.Duration = time.Since(res.Started)
	stdout.Flush()
	stderr.Flush()

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.Err = fmt.Errorf("%w: %s: exit status %d", ErrExitStatus, step.Command.Path, res.ExitCode)
		} else {
			res.Err = fmt.Errorf("%s: %w", step.Command.Path, waitErr)
		}
		logger.Warn("command failed",
			logging.String(logging.FieldEventType, "step_failed"),
			logging.Int("exit_code", res.ExitCode),
			logging.Error(waitErr),
		)
	} else {
		logger.Debug("command finished",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.Duration("step_duration", res.Duration),
		)
	}
	return res
}
