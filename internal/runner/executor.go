// internal/runner/executor.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

// Step actions understood by the executor.
const (
	ActionType     = "type"
	ActionClick    = "click"
	ActionSelect   = "select"
	ActionRead     = "read"
	ActionWait     = "wait"
	ActionGesture  = "gesture"
	ActionNavigate = "navigate"
	ActionPause    = "pause"
)

// typingSlack is added on top of the engine's typing budget to absorb
// driver round trips.
const typingSlack = 30 * time.Second

// Page is the browser surface a script runs against.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Element(selector string) humanoid.Element
}

// Engine is the behaviour engine as seen by the executor.
type Engine interface {
	humanoid.Controller
	TypingBudget(n int) time.Duration
}

// stepOutcome carries the optional details a handler reports on success.
type stepOutcome struct {
	attempts int
	detail   string
}

// stepHandler defines the function signature for a specific step action handler.
type stepHandler func(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error)

// Executor runs scripted steps against a page through the behaviour engine.
type Executor struct {
	logger   *zap.Logger
	engine   Engine
	page     Page
	handlers map[string]stepHandler
}

// NewExecutor creates a new Executor.
func NewExecutor(logger *zap.Logger, engine Engine, page Page) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		logger:   logger.Named("runner"),
		engine:   engine,
		page:     page,
		handlers: make(map[string]stepHandler),
	}
	e.registerHandlers()
	return e
}

// registerHandlers populates the internal map of actions to their handler functions.
func (e *Executor) registerHandlers() {
	e.handlers[ActionType] = e.handleType
	e.handlers[ActionClick] = e.handleClick
	e.handlers[ActionSelect] = e.handleSelect
	e.handlers[ActionRead] = e.handleRead
	e.handlers[ActionWait] = e.handleWait
	e.handlers[ActionGesture] = e.handleGesture
	e.handlers[ActionNavigate] = e.handleNavigate
	e.handlers[ActionPause] = e.handlePause
}

// Run executes the script and returns its report. An initial navigation to
// script.URL, when set, is reported as step 0. Steps after a failure are
// skipped when StopOnFailure is set, and always after cancellation.
func (e *Executor) Run(ctx context.Context, runID, sessionID string, script config.ScriptConfig) *schemas.RunReport {
	logger := observability.Tagged(e.logger, "", observability.CategoryRunner).With(
		zap.String("run_id", runID),
		zap.String("session_id", sessionID),
	)
	report := &schemas.RunReport{
		RunID:     runID,
		SessionID: sessionID,
		URL:       script.URL,
		StartedAt: time.Now(),
		Steps:     make([]schemas.StepReport, 0, len(script.Steps)+1),
	}

	steps := script.Steps
	if script.URL != "" {
		steps = append([]config.StepConfig{{Action: ActionNavigate, Value: script.URL, Label: "initial navigation"}}, steps...)
	}

	halted := false
	for i, step := range steps {
		if halted || ctx.Err() != nil {
			report.Steps = append(report.Steps, skipped(i, step))
			continue
		}

		if script.PauseBetweenSteps && i > 0 {
			if err := e.engine.CognitivePause(ctx, "between steps"); err != nil {
				logger.Debug("pause between steps interrupted", zap.Error(err))
				report.Steps = append(report.Steps, skipped(i, step))
				continue
			}
		}

		stepReport := e.ExecuteStep(ctx, i, step)
		report.Steps = append(report.Steps, stepReport)
		if stepReport.Status == schemas.StepFailed && script.StopOnFailure {
			halted = true
		}
	}

	report.Duration = time.Since(report.StartedAt)
	_, failed := report.Failed()
	report.Succeeded = !failed && ctx.Err() == nil
	logger.Info("Script finished.",
		zap.Bool("succeeded", report.Succeeded),
		zap.Int("steps", len(report.Steps)),
		zap.Duration("duration", report.Duration),
	)
	return report
}

// ExecuteStep looks up and runs the handler for a single step.
func (e *Executor) ExecuteStep(ctx context.Context, index int, step config.StepConfig) schemas.StepReport {
	action := strings.ToLower(step.Action)
	label := step.Label
	if label == "" {
		label = fmt.Sprintf("step %d: %s", index, action)
	}
	result := schemas.StepReport{
		Index:    index,
		Action:   action,
		Selector: step.Selector,
	}

	handler, ok := e.handlers[action]
	if !ok {
		result.Status = schemas.StepFailed
		result.Error = fmt.Sprintf("no handler for action '%s'", step.Action)
		return result
	}

	start := time.Now()
	outcome, err := handler(ctx, step, label)
	result.Elapsed = time.Since(start)
	result.Attempts = outcome.attempts
	result.Detail = outcome.detail

	if err != nil {
		result.Status = schemas.StepFailed
		result.Error = err.Error()
		e.logger.Warn("Step failed",
			zap.Int("index", index),
			zap.String("action", action),
			zap.String("context", label),
			zap.Error(err))
		return result
	}
	result.Status = schemas.StepSucceeded
	e.logger.Debug("Step succeeded", zap.Int("index", index), zap.String("action", action), zap.Duration("elapsed", result.Elapsed))
	return result
}

func skipped(index int, step config.StepConfig) schemas.StepReport {
	return schemas.StepReport{
		Index:    index,
		Action:   strings.ToLower(step.Action),
		Selector: step.Selector,
		Status:   schemas.StepSkipped,
	}
}

func (e *Executor) handleType(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	if step.Selector == "" {
		return stepOutcome{}, fmt.Errorf("type requires a 'selector'")
	}
	n := len([]rune(step.Value))
	typeCtx, cancel := context.WithTimeout(ctx, e.engine.TypingBudget(n)+typingSlack)
	defer cancel()

	if err := e.engine.Type(typeCtx, e.page.Element(step.Selector), step.Value, label); err != nil {
		return stepOutcome{}, err
	}
	return stepOutcome{detail: fmt.Sprintf("typed %d characters", n)}, nil
}

func (e *Executor) handleClick(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	if step.Selector == "" {
		return stepOutcome{}, fmt.Errorf("click requires a 'selector'")
	}
	res := e.engine.Click(ctx, e.page.Element(step.Selector), label, step.MaxRetries)
	return clickOutcome(res)
}

func (e *Executor) handleSelect(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	if step.Selector == "" || step.Option == "" {
		return stepOutcome{}, fmt.Errorf("select requires a 'selector' and an 'option'")
	}
	res := e.engine.SelectDropdown(ctx, e.page.Element(step.Selector), e.page.Element(step.Option), label)
	return clickOutcome(res)
}

// clickOutcome converts a click protocol result into a step outcome.
func clickOutcome(res humanoid.ClickResult) (stepOutcome, error) {
	out := stepOutcome{attempts: res.Attempts, detail: res.Outcome.String()}
	if res.OK() {
		return out, nil
	}
	err := res.Err
	if err == nil {
		err = errors.New("click did not land")
	}
	return out, fmt.Errorf("click failed after %d attempt(s): %w", res.Attempts, err)
}

func (e *Executor) handleRead(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	return stepOutcome{}, e.engine.ReadPage(ctx, label)
}

func (e *Executor) handleWait(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	return stepOutcome{}, e.engine.Delay(ctx, step.MinMs, step.MaxMs, label)
}

// handleGesture never fails; driver errors are only reported in the detail.
func (e *Executor) handleGesture(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	res := e.engine.RandomGesture(ctx, label)
	detail := res.Summary()
	if detail == "" {
		detail = "idle"
	}
	if res.Err != nil {
		detail += fmt.Sprintf(" (ignored: %v)", res.Err)
	}
	return stepOutcome{detail: detail}, nil
}

func (e *Executor) handleNavigate(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	if step.Value == "" {
		return stepOutcome{}, fmt.Errorf("navigate requires a 'value' (url)")
	}
	if err := e.page.Navigate(ctx, step.Value); err != nil {
		return stepOutcome{}, err
	}
	return stepOutcome{detail: step.Value}, nil
}

func (e *Executor) handlePause(ctx context.Context, step config.StepConfig, label string) (stepOutcome, error) {
	return stepOutcome{}, e.engine.CognitivePause(ctx, label)
}
