package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tarbackup/internal/archive"
	"tarbackup/internal/cmdline"
	"tarbackup/internal/config"
	"tarbackup/internal/history"
	"tarbackup/internal/job"
	"tarbackup/internal/lockfile"
	"tarbackup/internal/logging"
)

// ErrNoConfig reports a run started without a configuration.
var ErrNoConfig = errors.New("orchestrator requires a configuration")

// Options carries everything one run needs. Nothing is read from globals.
type Options struct {
	Config *config.Config
	Mode   archive.Mode
	// Date stamps archive and state file names; today when zero.
	Date time.Time
	// LockPath overrides Config.LockFile.
	LockPath string
	Logger   *slog.Logger
	// History receives the run record when non-nil.
	History *history.Store
}

// Orchestrator performs a single backup run.
type Orchestrator struct {
	cfg      *config.Config
	mode     archive.Mode
	date     time.Time
	lockPath string
	base     *slog.Logger
	logger   *slog.Logger
	history  *history.Store
	runner   *job.Runner
}

// New constructs an orchestrator from opts.
func New(opts Options) *Orchestrator {
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	lockPath := strings.TrimSpace(opts.LockPath)
	if lockPath == "" && opts.Config != nil {
		lockPath = opts.Config.LockFile
	}
	strict := opts.Config != nil && opts.Config.Strict()
	return &Orchestrator{
		cfg:      opts.Config,
		mode:     opts.Mode,
		date:     date,
		lockPath: lockPath,
		base:     opts.Logger,
		logger:   logging.NewComponentLogger(opts.Logger, "orchestrator"),
		history:  opts.History,
		runner:   job.NewRunner(opts.Logger, strict),
	}
}

// Run executes the backup pass. It returns lockfile.ErrLocked without doing
// any work when another run holds the lock. Individual command failures are
// reported in the Report, never as an error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if o.cfg == nil {
		return nil, ErrNoConfig
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Mode:    o.mode,
		Started: time.Now(),
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)

	// Rejected items still count: the script-wide actions run without them.
	if len(o.cfg.Items)+len(o.cfg.Rejected) == 0 {
		logger.Info("No backup jobs found", logging.String(logging.FieldEventType, "run_empty"))
		report.Finished = time.Now()
		return report, nil
	}

	enabled := o.enabledItems(logger)

	guard := lockfile.New(o.lockPath, o.base)
	if err := guard.Acquire(); err != nil {
		if errors.Is(err, lockfile.ErrLocked) {
			logging.ErrorWithContext(logger, "lock file exists, another backup appears to be running", "lock_held",
				logging.String("lock", o.lockPath),
				logging.String(logging.FieldErrorHint, "wait for the running backup to finish or delete the lock file if no run is active"),
			)
			return nil, err
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logger.Warn("lock release failed",
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.String("lock", o.lockPath),
				logging.Error(err),
			)
		}
	}()

	logger.Info("backup run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", o.mode.String()),
		logging.Int("items", len(enabled)),
	)

	queues := o.buildQueues(logger, enabled, report)

	scripts := o.cfg.ScriptActions()
	if step, ok := o.scriptStep(logger, job.KindScriptPre, scripts.PreAction); ok {
		report.Script = append(report.Script, o.runner.RunScript(ctx, step))
	}

	report.Items = o.runQueues(ctx, queues)

	if step, ok := o.scriptStep(logger, job.KindScriptPost, scripts.PostAction); ok {
		report.Script = append(report.Script, o.runner.RunScript(ctx, step))
	}

	report.Finished = time.Now()
	if scripts.ShowTime {
		logger.Info("Total time taken: " + job.FormatDuration(report.Duration()))
	}
	logger.Info("backup run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("items", len(report.Items)),
		logging.Int("excluded", len(report.Excluded)),
		logging.Int("failed_items", report.FailedItems()),
		logging.Duration("run_duration", report.Duration()),
	)

	o.record(ctx, logger, report)
	return report, nil
}

func (o *Orchestrator) enabledItems(logger *slog.Logger) []config.Item {
	enabled := make([]config.Item, 0, len(o.cfg.Items))
	for _, item := range o.cfg.Items {
		if !item.IsEnabled() {
			logger.Warn("backup item disabled, skipping",
				logging.String(logging.FieldEventType, "item_disabled"),
				logging.String(logging.FieldItem, item.Name),
			)
			continue
		}
		enabled = append(enabled, item)
	}
	return enabled
}

// buildQueues turns each item into its queue. Items whose archive step cannot
// be built are recorded as excluded and take no further part in the run.
func (o *Orchestrator) buildQueues(logger *slog.Logger, items []config.Item, report *Report) []job.Queue {
	opts := archive.Options{TarBinary: o.cfg.TarBinary}
	queues := make([]job.Queue, 0, len(items))
	for _, item := range items {
		itemLogger := logger.With(logging.String(logging.FieldItem, item.Name))

		plan, ok, err := archive.Build(item, o.mode, o.date, opts)
		if errors.Is(err, archive.ErrNoStateFile) && o.cfg.MissingState == config.MissingStateFull {
			itemLogger.Warn("no incremental state file, falling back to full backup",
				logging.String(logging.FieldEventType, "missing_state_full"),
			)
			plan, ok, err = archive.Build(item, archive.Full, o.date, opts)
		}
		if err != nil {
			hint := "check the destination path"
			if errors.Is(err, archive.ErrNoStateFile) {
				hint = "run a full backup (--full) for this item first"
			}
			logging.ErrorWithContext(itemLogger, "backup item excluded from run", "item_excluded",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, hint),
			)
			report.Excluded = append(report.Excluded, Exclusion{Item: item.Name, Err: err})
			continue
		}

		var planRef *archive.Plan
		if ok {
			planRef = &plan
			itemLogger.Debug("archive step planned",
				logging.String("archive", plan.Archive),
				logging.String("state_file", plan.StateFile),
				logging.String("mode", plan.Mode.String()),
			)
		} else {
			itemLogger.Info("no source or destination configured, running hooks only",
				logging.String(logging.FieldEventType, "item_hook_only"),
			)
		}

		queue, err := job.NewQueue(item, planRef)
		if err != nil {
			logging.ErrorWithContext(itemLogger, "backup item excluded from run", "item_excluded",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the item's pre_action or post_action"),
			)
			report.Excluded = append(report.Excluded, Exclusion{Item: item.Name, Err: err})
			continue
		}
		queues = append(queues, queue)
	}
	return queues
}

func (o *Orchestrator) scriptStep(logger *slog.Logger, kind job.Kind, line string) (job.Step, bool) {
	if strings.TrimSpace(line) == "" {
		return job.Step{}, false
	}
	cmd, err := cmdline.Parse(line)
	if err != nil {
		logging.ErrorWithContext(logger, "script action skipped", "script_action_invalid",
			logging.String(logging.FieldStep, string(kind)),
			logging.Error(err),
		)
		return job.Step{}, false
	}
	return job.Step{Kind: kind, Command: cmd}, true
}

// runQueues runs every queue on the worker pool and returns results in queue
// order once all of them have finished.
func (o *Orchestrator) runQueues(ctx context.Context, queues []job.Queue) []job.Result {
	results := make([]job.Result, len(queues))
	var group errgroup.Group
	if o.cfg.MaxParallel > 0 {
		group.SetLimit(o.cfg.MaxParallel)
	}
	for idx, queue := range queues {
		group.Go(func() error {
			results[idx] = o.runner.Run(ctx, queue)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, report *Report) {
	if o.history == nil {
		return
	}
	if err := o.history.Record(ctx, report.HistoryRun()); err != nil {
		logger.Warn("failed to record run history",
			logging.String(logging.FieldEventType, "history_record_failed"),
			logging.String("history_db", o.history.Path()),
			logging.Error(err),
		)
	}
}
