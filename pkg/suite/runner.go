package suite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/probeops/api-pulse/pkg/logger"
)

// Executor runs one test definition to completion. Implementations classify
// every outcome into a Result; nothing propagates past this boundary as an
// error.
type Executor interface {
	// Execute performs the check described by def and returns its result.
	Execute(ctx context.Context, def Definition) *Result
}

// Runner executes a suite of test definitions.
type Runner interface {
	// RegisterDefinitions adds definitions to the runner.
	RegisterDefinitions(defs ...Definition)
	// Run executes all registered definitions and returns the summary.
	Run(ctx context.Context) *Summary
	// GetID returns the suite ID of the runner.
	GetID() string
	// GetLog returns the run log of the runner.
	GetLog() *logger.SuiteLogger
	// GetResults returns the results collected so far.
	GetResults() []*Result
}

// RunInfo identifies a suite run. The executor stamps it onto every result
// so the two never disagree about which run a result belongs to.
type RunInfo struct {
	SuiteID     string
	Environment string
	Runner      string
}

// defaultRunner is a default implementation of the Runner interface.
type defaultRunner struct {
	id       string
	log      *logger.SuiteLogger
	executor Executor
	git      GitMetadata
	info     RunInfo
	defs     []Definition
	results  []*Result
}

// NewDefaultRunner creates a new suite runner. The suite ID and run info are
// fixed at construction time and shared by every result the run emits.
func NewDefaultRunner(executor Executor, info RunInfo, git GitMetadata) Runner {
	if info.SuiteID == "" {
		info.SuiteID = GenerateSuiteID()
	}

	// The run log is a detailed transcript of the suite run, persisted
	// alongside the summary artifact. It helps us replay how a suite got to
	// the verdict it did.
	log := logger.NewSuiteLogger(info.SuiteID)

	return &defaultRunner{
		id:       info.SuiteID,
		log:      log,
		executor: executor,
		git:      git,
		info:     info,
		defs:     make([]Definition, 0),
	}
}

// GetID returns the suite ID of the runner.
func (r *defaultRunner) GetID() string {
	return r.id
}

// GetLog returns the run log of the runner.
func (r *defaultRunner) GetLog() *logger.SuiteLogger {
	return r.log
}

// GetResults returns the results collected so far.
func (r *defaultRunner) GetResults() []*Result {
	return r.results
}

// RegisterDefinitions adds definitions to the runner.
func (r *defaultRunner) RegisterDefinitions(defs ...Definition) {
	r.defs = append(r.defs, defs...)
}

// Run executes all registered definitions sequentially, in registration
// order, and aggregates the summary. A suite cannot be aborted once started;
// the only cancellation in play is the per-test timeout inside the executor.
func (r *defaultRunner) Run(ctx context.Context) *Summary {
	started := time.Now()
	timestamp := started.UTC()

	r.log.Printf("=== Running suite %s (%d tests, environment: %s)", r.id, len(r.defs), r.info.Environment)

	results := make([]*Result, 0, len(r.defs))

	for _, def := range r.defs {
		result := r.executor.Execute(ctx, def)
		results = append(results, result)

		switch result.Status {
		case StatusPassed:
			r.log.Printf("  PASSED - %s (%dms)", result.TestName, result.DurationMS)
		case StatusFailed:
			r.log.Printf("  FAILED - %s: %s", result.TestName, result.Error)
		}
	}

	passed := 0

	for _, result := range results {
		if result.Status == StatusPassed {
			passed++
		}
	}

	var (
		total       = len(results)
		failed      = total - passed
		successRate float64
	)

	if total > 0 {
		successRate = float64(passed) / float64(total) * 100
	}

	summary := &Summary{
		SuiteID:          r.id,
		Timestamp:        timestamp,
		TotalTests:       total,
		PassedTests:      passed,
		FailedTests:      failed,
		SuccessRate:      successRate,
		TotalDurationMS:  time.Since(started).Milliseconds(),
		Environment:      r.info.Environment,
		Runner:           r.info.Runner,
		GitCommit:        r.git.Commit,
		GitBranch:        r.git.Branch,
		GitHubRunID:      r.git.RunID,
		GitHubRepository: r.git.Repository,
		Results:          results,
	}

	logSuiteSummary(r.log, summary)

	r.results = results

	return summary
}

// logSuiteSummary dumps the aggregate numbers into the run log.
func logSuiteSummary(log *logger.SuiteLogger, summary *Summary) {
	log.Printf("\n=== Suite summary")
	log.Printf("  - Total: %d", summary.TotalTests)
	log.Printf("  - Passed: %d", summary.PassedTests)
	log.Printf("  - Failed: %d", summary.FailedTests)
	log.Printf("  - Success rate: %.1f%%", summary.SuccessRate)
	log.Printf("  - Duration: %dms", summary.TotalDurationMS)
}

// GenerateSuiteID generates a unique ID for a suite run.
func GenerateSuiteID() string {
	// Generate 8 random bytes.
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// If random fails, use timestamp only.
		return fmt.Sprintf("suite-%s", time.Now().UTC().Format("20060102-150405"))
	}

	// Format as suite-timestamp-random.
	return fmt.Sprintf("suite-%s-%s",
		time.Now().UTC().Format("20060102-150405"),
		hex.EncodeToString(b),
	)
}
