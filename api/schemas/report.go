package schemas

import "time"

// StepStatus is the outcome of a single scripted step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepReport records what happened when one scripted step was executed.
type StepReport struct {
	Index    int           `json:"index"`
	Action   string        `json:"action"`
	Selector string        `json:"selector,omitempty"`
	Status   StepStatus    `json:"status"`
	Attempts int           `json:"attempts,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// RunReport aggregates the step reports of one browser session.
type RunReport struct {
	RunID     string        `json:"runId"`
	SessionID string        `json:"sessionId"`
	URL       string        `json:"url"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Steps     []StepReport  `json:"steps"`
	Succeeded bool          `json:"succeeded"`
}

// Failed returns the first failed step, if any.
func (r *RunReport) Failed() (StepReport, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}
	return StepReport{}, false
}
