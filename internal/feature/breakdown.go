package feature

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/parse"
	"github.com/flowboard/aicore/pkg/aierr"
)

// Subtask is one generated work item.
type Subtask struct {
	Title         string  `json:"title"`
	EstimateHours float64 `json:"estimate_hours"`
}

// BreakdownResult is the typed result of task breakdown.
type BreakdownResult struct {
	TaskID   string    `json:"task_id"`
	Subtasks []Subtask `json:"subtasks"`
	Source   string    `json:"source"`
}

type breakdownPayload struct {
	Subtasks []Subtask `json:"subtasks"`
}

// maxSubtasks caps how many generated subtasks are kept.
const maxSubtasks = 10

// Breakdown splits a task into concrete subtasks.
type Breakdown struct {
	deps Deps
}

// NewBreakdown creates a breakdown adapter.
func NewBreakdown(deps Deps) *Breakdown {
	return &Breakdown{deps: deps}
}

// Split returns generated subtasks for the task, or a phase-template
// fallback when the AI pipeline fails recoverably.
func (b *Breakdown) Split(ctx context.Context, taskID, callerID string) (*BreakdownResult, error) {
	task, err := b.deps.Store.Task(ctx, taskID)
	if err != nil {
		return nil, aierr.NewNotFound(fmt.Sprintf("task %q not found", taskID))
	}

	text, err := b.deps.AI.Complete(ctx, &aicore.CompletionRequest{
		Kind:         "breakdown",
		CallerID:     callerID,
		SystemPrompt: breakdownSystemPrompt,
		UserPrompt:   taskContext(task, b.deps.now()),
	})
	if err != nil {
		if aierr.IsRecoverable(err) {
			b.deps.recordFallback("breakdown", err)
			return b.heuristic(task), nil
		}
		return nil, err
	}

	payload, err := parse.Into[breakdownPayload](text)
	if err != nil {
		b.deps.recordFallback("breakdown", err)
		return b.heuristic(task), nil
	}

	result := b.coerce(task, payload)
	if len(result.Subtasks) == 0 {
		// A decodable response with nothing usable in it is still a
		// parse-class failure.
		b.deps.recordFallback("breakdown", aierr.NewParseError("breakdown contained no usable subtasks"))
		return b.heuristic(task), nil
	}
	return result, nil
}

func (b *Breakdown) coerce(task *Task, payload breakdownPayload) *BreakdownResult {
	subtasks := make([]Subtask, 0, len(payload.Subtasks))
	for _, st := range payload.Subtasks {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			continue
		}
		subtasks = append(subtasks, Subtask{
			Title:         title,
			EstimateHours: clamp(st.EstimateHours, 0.5, 40),
		})
		if len(subtasks) == maxSubtasks {
			break
		}
	}
	return &BreakdownResult{TaskID: task.ID, Subtasks: subtasks, Source: SourceModel}
}

// heuristic produces a generic plan scaled by the task estimate.
func (b *Breakdown) heuristic(task *Task) *BreakdownResult {
	total := task.EstimateHours
	if total <= 0 {
		total = 8
	}

	phases := []struct {
		title string
		share float64
	}{
		{"Clarify requirements for: " + task.Title, 0.2},
		{"Implement: " + task.Title, 0.5},
		{"Review and test: " + task.Title, 0.3},
	}

	subtasks := make([]Subtask, 0, len(phases))
	for _, ph := range phases {
		subtasks = append(subtasks, Subtask{
			Title:         ph.title,
			EstimateHours: clamp(total*ph.share, 0.5, 40),
		})
	}
	return &BreakdownResult{TaskID: task.ID, Subtasks: subtasks, Source: SourceHeuristic}
}
