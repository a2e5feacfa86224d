package orchestrator

import (
	"time"

	"tarbackup/internal/archive"
	"tarbackup/internal/history"
	"tarbackup/internal/job"
)

// scriptItem names script-wide steps in the run history.
const scriptItem = "(script)"

// Exclusion is an enabled item that never reached a runner.
type Exclusion struct {
	Item string
	Err  error
}

// Report summarises one run.
type Report struct {
	RunID    string
	Mode     archive.Mode
	Started  time.Time
	Finished time.Time
	// Items holds one result per queued item, in configuration order.
	Items    []job.Result
	Excluded []Exclusion
	// Script holds the script-wide pre and post action results that ran.
	Script []job.StepResult
}

// Duration is the wall-clock length of the run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Result returns the result for the named item.
func (r *Report) Result(item string) (job.Result, bool) {
	for _, res := range r.Items {
		if res.Item == item {
			return res, true
		}
	}
	return job.Result{}, false
}

// FailedItems counts items with at least one failed step.
func (r *Report) FailedItems() int {
	count := 0
	for _, res := range r.Items {
		if res.Failed() {
			count++
		}
	}
	return count
}

// HistoryRun converts the report into its history record.
func (r *Report) HistoryRun() history.Run {
	run := history.Run{
		ID:           r.RunID,
		Mode:         r.Mode.String(),
		StartedAt:    r.Started,
		FinishedAt:   r.Finished,
		ItemCount:    len(r.Items),
		SkippedItems: len(r.Excluded),
	}
	for seq, step := range r.Script {
		run.Steps = append(run.Steps, historyStep(scriptItem, seq, step))
	}
	for _, res := range r.Items {
		for seq, step := range res.Steps {
			run.Steps = append(run.Steps, historyStep(res.Item, seq, step))
		}
	}
	return run
}

func historyStep(item string, seq int, step job.StepResult) history.Step {
	out := history.Step{
		Item:      item,
		Seq:       seq,
		Kind:      string(step.Kind),
		Command:   step.Command,
		StartedAt: step.Started,
		Duration:  step.Duration,
		ExitCode:  step.ExitCode,
	}
	if step.Err != nil {
		out.Error = step.Err.Error()
	}
	return out
}
