package suite

import (
	"encoding/json"
	"time"
)

// Status represents the outcome of a single test.
type Status string

// Define the statuses.
const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Default values applied to definitions that omit them.
const (
	DefaultExpectedStatus = 200
	DefaultTimeoutSeconds = 30
)

// Definition describes one HTTP check to perform. Definitions are immutable
// once loaded from configuration.
type Definition struct {
	Name           string          `json:"name"`
	URL            string          `json:"url"`
	Method         string          `json:"method"`
	ExpectedStatus int             `json:"expected_status"`
	Timeout        int             `json:"timeout"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	ValidateJSON   bool            `json:"validate_json"`
}

// Result is the outcome of executing one definition once. It is created by
// the executor and never mutated afterwards.
type Result struct {
	TestName       string    `json:"test_name"`
	SuiteID        string    `json:"test_id"`
	URL            string    `json:"url"`
	Method         string    `json:"method"`
	Status         Status    `json:"status"`
	StartTime      time.Time `json:"start_time"`
	DurationMS     int64     `json:"duration_ms"`
	Error          string    `json:"error,omitempty"`
	ResponseStatus int       `json:"response_status,omitempty"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Environment    string    `json:"environment"`
	Runner         string    `json:"runner"`
}

// Summary aggregates the results of one suite run. It is the serialized
// contract between the runner and the notifier; both sides unmarshal this
// exact shape, so field drift here breaks the pipeline.
type Summary struct {
	SuiteID          string    `json:"test_suite_id"`
	Timestamp        time.Time `json:"timestamp"`
	TotalTests       int       `json:"total_tests"`
	PassedTests      int       `json:"passed_tests"`
	FailedTests      int       `json:"failed_tests"`
	SuccessRate      float64   `json:"success_rate"`
	TotalDurationMS  int64     `json:"total_duration_ms"`
	Environment      string    `json:"environment"`
	Runner           string    `json:"runner"`
	GitCommit        string    `json:"git_commit"`
	GitBranch        string    `json:"git_branch"`
	GitHubRunID      string    `json:"github_run_id"`
	GitHubRepository string    `json:"github_repository"`
	Results          []*Result `json:"test_results"`
}

// GitMetadata carries the CI identifiers stamped onto a summary. All fields
// are optional; unknown values are recorded as "unknown".
type GitMetadata struct {
	Commit     string
	Branch     string
	RunID      string
	Repository string
}
