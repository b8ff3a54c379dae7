package notify

import (
	"fmt"
	"strings"

	"github.com/probeops/api-pulse/pkg/suite"
)

// maxFailedDetails caps the failure list in a notification; full detail
// lives in the summary artifact.
const maxFailedDetails = 5

// Status labels and the alert levels/colors they map to.
const (
	StatusAllPassed      = "ALL TESTS PASSED"
	StatusPartialSuccess = "PARTIAL SUCCESS"
	StatusFailed         = "TESTS FAILED"

	AlertLevelSuccess = "success"
	AlertLevelWarning = "warning"
	AlertLevelError   = "error"

	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// partialSuccessThreshold is the success rate (inclusive) at or above which
// a run with failures is still only a partial failure.
const partialSuccessThreshold = 80.0

// FailedDetail is one entry in the truncated failure list.
type FailedDetail struct {
	Name       string
	Error      string
	URL        string
	StatusCode int
}

// Summary is the presentation-only projection of a suite summary. It is
// derived from the raw payload on the consumer side; the two processes share
// nothing but the serialized suite.Summary.
type Summary struct {
	Status          string
	AlertLevel      string
	Color           string
	TotalTests      int
	PassedTests     int
	FailedTests     int
	SuccessRate     float64
	DurationSeconds float64
	Environment     string
	Runner          string
	FailedDetails   []FailedDetail
	GitCommit       string
	GitBranch       string
	GitHubRunID     string
	Repository      string
}

// FromSuiteSummary derives the notification summary from a raw suite summary.
func FromSuiteSummary(s *suite.Summary) *Summary {
	var status, alertLevel, color string

	switch {
	case s.FailedTests == 0:
		status, alertLevel, color = StatusAllPassed, AlertLevelSuccess, ColorGood
	case s.SuccessRate >= partialSuccessThreshold:
		status, alertLevel, color = StatusPartialSuccess, AlertLevelWarning, ColorWarning
	default:
		status, alertLevel, color = StatusFailed, AlertLevelError, ColorDanger
	}

	details := make([]FailedDetail, 0, maxFailedDetails)

	for _, result := range s.Results {
		if result.Status != suite.StatusFailed {
			continue
		}

		if len(details) == maxFailedDetails {
			break
		}

		errMsg := result.Error
		if errMsg == "" {
			errMsg = "No error message"
		}

		details = append(details, FailedDetail{
			Name:       result.TestName,
			Error:      errMsg,
			URL:        result.URL,
			StatusCode: result.ResponseStatus,
		})
	}

	return &Summary{
		Status:          status,
		AlertLevel:      alertLevel,
		Color:           color,
		TotalTests:      s.TotalTests,
		PassedTests:     s.PassedTests,
		FailedTests:     s.FailedTests,
		SuccessRate:     s.SuccessRate,
		DurationSeconds: float64(s.TotalDurationMS) / 1000,
		Environment:     s.Environment,
		Runner:          s.Runner,
		FailedDetails:   details,
		GitCommit:       truncateCommit(s.GitCommit),
		GitBranch:       strings.TrimPrefix(s.GitBranch, "refs/heads/"),
		GitHubRunID:     s.GitHubRunID,
		Repository:      s.GitHubRepository,
	}
}

// RunURL returns the GitHub Actions run URL, or "" when the identifying ids
// are unknown.
func (s *Summary) RunURL() string {
	if s.GitHubRunID == "" || s.GitHubRunID == "unknown" {
		return ""
	}

	if s.Repository == "" || s.Repository == "unknown" {
		return ""
	}

	return fmt.Sprintf("https://github.com/%s/actions/runs/%s", s.Repository, s.GitHubRunID)
}

func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}

	return commit
}
