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

// RiskAssessment is the typed result of risk prediction.
type RiskAssessment struct {
	TaskID  string   `json:"task_id"`
	Level   string   `json:"level"` // low, medium, high
	Score   float64  `json:"score"` // 0..100
	Factors []string `json:"factors"`
	Summary string   `json:"summary"`
	Source  string   `json:"source"`
}

type riskPayload struct {
	Level   string   `json:"level"`
	Score   float64  `json:"score"`
	Factors []string `json:"factors"`
	Summary string   `json:"summary"`
}

// RiskPredictor assesses the delivery risk of a single task.
type RiskPredictor struct {
	deps Deps
}

// NewRiskPredictor creates a risk predictor.
func NewRiskPredictor(deps Deps) *RiskPredictor {
	return &RiskPredictor{deps: deps}
}

// Predict returns a risk assessment for the task. Recoverable AI
// failures degrade to a threshold-based heuristic of the same shape;
// quota, disabled, and missing-task failures propagate.
func (p *RiskPredictor) Predict(ctx context.Context, taskID, callerID string) (*RiskAssessment, error) {
	task, err := p.deps.Store.Task(ctx, taskID)
	if err != nil {
		return nil, aierr.NewNotFound(fmt.Sprintf("task %q not found", taskID))
	}

	text, err := p.deps.AI.Complete(ctx, &aicore.CompletionRequest{
		Kind:         "risk_prediction",
		CallerID:     callerID,
		SystemPrompt: riskSystemPrompt,
		UserPrompt:   taskContext(task, p.deps.now()),
	})
	if err != nil {
		if aierr.IsRecoverable(err) {
			p.deps.recordFallback("risk_prediction", err)
			return p.heuristic(task), nil
		}
		return nil, err
	}

	payload, err := parse.Into[riskPayload](text)
	if err != nil {
		p.deps.recordFallback("risk_prediction", err)
		return p.heuristic(task), nil
	}
	return p.coerce(task, payload), nil
}

// coerce maps the decoded payload into a validated assessment: score
// clamped to [0,100], level whitelisted and rederived from the score
// when the model invents one.
func (p *RiskPredictor) coerce(task *Task, payload riskPayload) *RiskAssessment {
	score := clamp(payload.Score, 0, 100)

	level := strings.ToLower(strings.TrimSpace(payload.Level))
	if !oneOf(level, "low", "medium", "high") {
		level = levelForScore(score)
	}

	factors := make([]string, 0, len(payload.Factors))
	for _, f := range payload.Factors {
		if f = strings.TrimSpace(f); f != "" {
			factors = append(factors, f)
		}
	}

	return &RiskAssessment{
		TaskID:  task.ID,
		Level:   level,
		Score:   score,
		Factors: factors,
		Summary: strings.TrimSpace(payload.Summary),
		Source:  SourceModel,
	}
}

// heuristic computes the deterministic substitute from simple
// thresholds on the same task data the prompt was built from.
func (p *RiskPredictor) heuristic(task *Task) *RiskAssessment {
	now := p.deps.now()
	score := 10.0
	var factors []string

	if task.Status == "blocked" {
		score += 35
		factors = append(factors, "task is blocked")
	}
	if task.DueDate != nil {
		switch {
		case task.DueDate.Before(now):
			score += 40
			factors = append(factors, "due date has passed")
		case task.DueDate.Before(now.Add(48 * time.Hour)):
			score += 20
			factors = append(factors, "due within 48 hours")
		}
	}
	if n := len(task.Dependencies); n > 0 {
		score += float64(n) * 5
		factors = append(factors, fmt.Sprintf("%d unresolved dependencies", n))
	}
	if task.EstimateHours == 0 {
		score += 10
		factors = append(factors, "no effort estimate")
	}

	score = clamp(score, 0, 100)
	return &RiskAssessment{
		TaskID:  task.ID,
		Level:   levelForScore(score),
		Score:   score,
		Factors: factors,
		Summary: "Risk estimated from schedule and dependency signals.",
		Source:  SourceHeuristic,
	}
}

func levelForScore(score float64) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}
