package feature

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/parse"
	"github.com/flowboard/aicore/pkg/aierr"
)

// PriorityRecommendation is the typed result of priority advice.
type PriorityRecommendation struct {
	TaskID    string `json:"task_id"`
	Priority  string `json:"priority"` // low, medium, high, urgent
	Rationale string `json:"rationale"`
	Source    string `json:"source"`
}

type priorityPayload struct {
	Priority  string `json:"priority"`
	Rationale string `json:"rationale"`
}

// PriorityAdvisor recommends a priority for a task in project context.
type PriorityAdvisor struct {
	deps Deps
}

// NewPriorityAdvisor creates a priority advisor.
func NewPriorityAdvisor(deps Deps) *PriorityAdvisor {
	return &PriorityAdvisor{deps: deps}
}

// Recommend returns a priority recommendation, degrading to a
// deadline-based heuristic when the AI pipeline fails recoverably.
func (a *PriorityAdvisor) Recommend(ctx context.Context, taskID, callerID string) (*PriorityRecommendation, error) {
	task, err := a.deps.Store.Task(ctx, taskID)
	if err != nil {
		return nil, aierr.NewNotFound(fmt.Sprintf("task %q not found", taskID))
	}

	siblings, err := a.deps.Store.ProjectTasks(ctx, task.ProjectID)
	if err != nil {
		siblings = nil
	}

	text, err := a.deps.AI.Complete(ctx, &aicore.CompletionRequest{
		Kind:         "priority_recommendation",
		CallerID:     callerID,
		SystemPrompt: prioritySystemPrompt,
		UserPrompt:   projectContext(task, siblings, a.deps.now()),
	})
	if err != nil {
		if aierr.IsRecoverable(err) {
			a.deps.recordFallback("priority_recommendation", err)
			return a.heuristic(task), nil
		}
		return nil, err
	}

	payload, err := parse.Into[priorityPayload](text)
	if err != nil {
		a.deps.recordFallback("priority_recommendation", err)
		return a.heuristic(task), nil
	}
	return a.coerce(task, payload), nil
}

func (a *PriorityAdvisor) coerce(task *Task, payload priorityPayload) *PriorityRecommendation {
	priority := strings.ToLower(strings.TrimSpace(payload.Priority))
	if !oneOf(priority, "low", "medium", "high", "urgent") {
		// Keep the current priority rather than trust an invented one.
		priority = task.Priority
		if !oneOf(priority, "low", "medium", "high", "urgent") {
			priority = "medium"
		}
	}

	return &PriorityRecommendation{
		TaskID:    task.ID,
		Priority:  priority,
		Rationale: strings.TrimSpace(payload.Rationale),
		Source:    SourceModel,
	}
}

// heuristic derives priority from due-date pressure and blockage.
func (a *PriorityAdvisor) heuristic(task *Task) *PriorityRecommendation {
	now := a.deps.now()

	priority := "medium"
	rationale := "No strong schedule signal; keeping a middle priority."

	switch {
	case task.DueDate != nil && task.DueDate.Before(now):
		priority = "urgent"
		rationale = "The due date has already passed."
	case task.DueDate != nil && task.DueDate.Before(now.Add(48*time.Hour)):
		priority = "high"
		rationale = "The task is due within 48 hours."
	case task.Status == "blocked":
		priority = "high"
		rationale = "The task is blocked and needs attention to unblock."
	case task.DueDate == nil && task.EstimateHours <= 2:
		priority = "low"
		rationale = "Small task with no deadline."
	}

	return &PriorityRecommendation{
		TaskID:    task.ID,
		Priority:  priority,
		Rationale: rationale,
		Source:    SourceHeuristic,
	}
}
