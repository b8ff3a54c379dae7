package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

// webhookPayload mirrors the wire shape the receiving chat service expects.
type webhookPayload struct {
	Text        string `json:"text"`
	Attachments []struct {
		Color  string `json:"color"`
		Fields []struct {
			Title string `json:"title"`
			Value string `json:"value"`
			Short bool   `json:"short"`
		} `json:"fields"`
	} `json:"attachments"`
}

func failingSummary() *suite.Summary {
	return &suite.Summary{
		SuiteID:          "suite-test",
		TotalTests:       4,
		PassedTests:      3,
		FailedTests:      1,
		SuccessRate:      75.0,
		TotalDurationMS:  1200,
		Environment:      "github-actions",
		Runner:           "GitHub Actions Runner",
		GitCommit:        "0123456789abcdef",
		GitBranch:        "refs/heads/main",
		GitHubRunID:      "42",
		GitHubRepository: "probeops/api-pulse",
		Results: []*suite.Result{
			{TestName: "ok", Status: suite.StatusPassed},
			{TestName: "broken", Status: suite.StatusFailed, Error: "Expected 200, got 500", ResponseStatus: 500},
		},
	}
}

func TestSendPostsWebhookPayload(t *testing.T) {
	var payload webhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	NewNotifier(testLog(), server.URL).Send(context.Background(), failingSummary())

	assert.Equal(t, "API Test Results: TESTS FAILED", payload.Text)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "danger", payload.Attachments[0].Color)

	fields := payload.Attachments[0].Fields
	require.Len(t, fields, 4)

	assert.Equal(t, "Test Summary", fields[0].Title)
	assert.Contains(t, fields[0].Value, "Passed: 3")
	assert.Contains(t, fields[0].Value, "Success Rate: 75.0%")
	assert.True(t, fields[0].Short)

	assert.Equal(t, "Environment", fields[1].Title)
	assert.Contains(t, fields[1].Value, "Runner: github-actions")
	assert.Contains(t, fields[1].Value, "Branch: main")
	assert.Contains(t, fields[1].Value, "Commit: 01234567")
	assert.True(t, fields[1].Short)

	assert.Equal(t, "Failed Tests", fields[2].Title)
	assert.Contains(t, fields[2].Value, "• broken: Expected 200, got 500")
	assert.False(t, fields[2].Short)

	assert.Equal(t, "GitHub Actions", fields[3].Title)
	assert.Contains(t, fields[3].Value, "https://github.com/probeops/api-pulse/actions/runs/42")
}

func TestSendAllPassedOmitsFailureField(t *testing.T) {
	var payload webhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	raw := &suite.Summary{
		TotalTests:  2,
		PassedTests: 2,
		SuccessRate: 100.0,
		GitCommit:   "unknown",
		GitBranch:   "unknown",
	}

	NewNotifier(testLog(), server.URL).Send(context.Background(), raw)

	assert.Equal(t, "API Test Results: ALL TESTS PASSED", payload.Text)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "good", payload.Attachments[0].Color)

	for _, field := range payload.Attachments[0].Fields {
		assert.NotEqual(t, "Failed Tests", field.Title)
		assert.NotEqual(t, "GitHub Actions", field.Title)
	}
}

func TestSendWithoutWebhookIsNoop(t *testing.T) {
	// Must not panic or error; the summary is logged instead.
	NewNotifier(testLog(), "").Send(context.Background(), failingSummary())
}

func TestSendSwallowsDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// Delivery failure is logged, never surfaced.
	NewNotifier(testLog(), server.URL).Send(context.Background(), failingSummary())
}
