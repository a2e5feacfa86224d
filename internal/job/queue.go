package job

import (
	"fmt"

	"tarbackup/internal/archive"
	"tarbackup/internal/cmdline"
	"tarbackup/internal/config"
)

// Kind names the role of a step within a queue.
type Kind string

const (
	KindPreAction  Kind = "pre_action"
	KindArchive    Kind = "archive"
	KindPostAction Kind = "post_action"
	// Script-wide actions run outside any item queue.
	KindScriptPre  Kind = "script_pre_action"
	KindScriptPost Kind = "script_post_action"
)

// Step is one command in a queue.
type Step struct {
	Kind    Kind
	Command cmdline.Command
}

// Queue is the ordered work for one backup item.
type Queue struct {
	Item     string
	ShowTime bool
	Steps    []Step
}

// Len returns the number of steps in the queue.
func (q Queue) Len() int {
	return len(q.Steps)
}

// NewQueue builds the queue for item. plan is nil for items without an
// archive step.
func NewQueue(item config.Item, plan *archive.Plan) (Queue, error) {
	q := Queue{Item: item.Name, ShowTime: item.ShowTime}

	if item.PreAction != "" {
		cmd, err := cmdline.Parse(item.PreAction)
		if err != nil {
			return Queue{}, fmt.Errorf("item %s: pre_action: %w", item.Name, err)
		}
		q.Steps = append(q.Steps, Step{Kind: KindPreAction, Command: cmd})
	}

	if plan != nil {
		q.Steps = append(q.Steps, Step{Kind: KindArchive, Command: plan.Command})
	}

	if item.PostAction != "" {
		cmd, err := cmdline.Parse(item.PostAction)
		if err != nil {
			return Queue{}, fmt.Errorf("item %s: post_action: %w", item.Name, err)
		}
		q.Steps = append(q.Steps, Step{Kind: KindPostAction, Command: cmd})
	}

	return q, nil
}
