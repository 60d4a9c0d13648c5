package feature

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

const riskSystemPrompt = `You are a project-management assistant that assesses delivery risk for a single task.
Respond with a single JSON object and nothing else, using exactly these fields:
{"level":"low|medium|high","score":0-100,"factors":["..."],"summary":"one sentence"}`

const breakdownSystemPrompt = `You are a project-management assistant that splits a task into concrete subtasks.
Respond with a single JSON object and nothing else, using exactly this shape:
{"subtasks":[{"title":"...","estimate_hours":1.5}]}
Produce between 2 and 10 subtasks.`

const prioritySystemPrompt = `You are a project-management assistant that recommends a priority for a task relative to its project.
Respond with a single JSON object and nothing else, using exactly these fields:
{"priority":"low|medium|high|urgent","rationale":"one or two sentences"}`

func taskContext(task *Task, now time.Time) string {
	snapshot, err := json.Marshal(task)
	if err != nil {
		snapshot = []byte("{}")
	}
	return fmt.Sprintf("Today is %s.\nTask:\n%s", now.Format("2006-01-02"), snapshot)
}

func projectContext(task *Task, siblings []*Task, now time.Time) string {
	type sibling struct {
		Title    string `json:"title"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
		DueDate  string `json:"due_date,omitempty"`
	}

	summary := make([]sibling, 0, len(siblings))
	for _, s := range siblings {
		if s.ID == task.ID {
			continue
		}
		entry := sibling{Title: s.Title, Status: s.Status, Priority: s.Priority}
		if s.DueDate != nil {
			entry.DueDate = s.DueDate.Format("2006-01-02")
		}
		summary = append(summary, entry)
	}

	others, err := json.Marshal(summary)
	if err != nil {
		others = []byte("[]")
	}
	return fmt.Sprintf("%s\nOther tasks in the project:\n%s", taskContext(task, now), others)
}
