// Package check defines the tri-state result shared by all gating services.
//
// Every compliance and security check resolves to one of three outcomes:
// passed, warning, or failed. Warnings never block processing but are
// surfaced on the transaction's audit trail; failures always block.
package check

import "fmt"

// Outcome is the tagged state of a gate check.
type Outcome string

const (
	// Passed means the check found nothing of note.
	Passed Outcome = "PASSED"
	// Warning means the check found something worth surfacing but not blocking.
	Warning Outcome = "WARNING"
	// Failed means the check blocks the transaction.
	Failed Outcome = "FAILED"
)

// Result is an immutable gate-check outcome with an operator-facing message
// and a stable machine-readable code.
type Result struct {
	Outcome Outcome
	Message string
	Code    string
}

// Pass returns a passed result.
func Pass() Result {
	return Result{Outcome: Passed}
}

// Warn returns a warning result with the given reason.
func Warn(code, message string) Result {
	return Result{Outcome: Warning, Code: code, Message: message}
}

// Fail returns a failed result with the given reason.
func Fail(code, message string) Result {
	return Result{Outcome: Failed, Code: code, Message: message}
}

// Blocked reports whether the result blocks processing.
func (r Result) Blocked() bool {
	return r.Outcome == Failed
}

// IsWarning reports whether the result is advisory.
func (r Result) IsWarning() bool {
	return r.Outcome == Warning
}

// String renders the result for logs.
func (r Result) String() string {
	if r.Outcome == Passed {
		return string(Passed)
	}
	return fmt.Sprintf("%s [%s]: %s", r.Outcome, r.Code, r.Message)
}

// Report aggregates the results of a gate run.
type Report struct {
	Results []Result
}

// Append adds results to the report.
func (rep *Report) Append(results ...Result) {
	rep.Results = append(rep.Results, results...)
}

// Blocked returns the first failed result, if any.
func (rep *Report) Blocked() (Result, bool) {
	for _, r := range rep.Results {
		if r.Blocked() {
			return r, true
		}
	}
	return Result{}, false
}

// Warnings returns the messages of all advisory results.
func (rep *Report) Warnings() []string {
	var warnings []string
	for _, r := range rep.Results {
		if r.IsWarning() {
			warnings = append(warnings, fmt.Sprintf("[%s] %s", r.Code, r.Message))
		}
	}
	return warnings
}
