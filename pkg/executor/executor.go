package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/probeops/api-pulse/pkg/httpclient"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
)

// httpExecutor executes one test definition as a single HTTP request. Every
// outcome, including transport failures and timeouts, is classified into a
// Result; the suite is never aborted by one misbehaving test.
type httpExecutor struct {
	client *httpclient.ClientWrapper
	log    *logrus.Logger
	info   suite.RunInfo
}

// New creates an HTTP-backed executor stamping results with the given run info.
func New(client *httpclient.ClientWrapper, log *logrus.Logger, info suite.RunInfo) suite.Executor {
	return &httpExecutor{
		client: client,
		log:    log,
		info:   info,
	}
}

// Execute performs the check described by def and returns its result.
func (e *httpExecutor) Execute(ctx context.Context, def suite.Definition) *suite.Result {
	started := time.Now()

	result := &suite.Result{
		TestName:    def.Name,
		SuiteID:     e.info.SuiteID,
		URL:         def.URL,
		Method:      def.Method,
		Status:      suite.StatusFailed,
		StartTime:   started.UTC(),
		Environment: e.info.Environment,
		Runner:      e.info.Runner,
	}

	timeout := def.Timeout
	if timeout <= 0 {
		timeout = suite.DefaultTimeoutSeconds
	}

	expected := def.ExpectedStatus
	if expected == 0 {
		expected = suite.DefaultExpectedStatus
	}

	// The deadline bounds exactly one request attempt; expiry fails this
	// test and nothing else.
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	req, err := e.buildRequest(reqCtx, def)
	if err != nil {
		result.Error = err.Error()
		result.DurationMS = time.Since(started).Milliseconds()

		return result
	}

	e.log.WithFields(logrus.Fields{
		"test":   def.Name,
		"method": req.Method,
		"url":    def.URL,
	}).Info("Executing test")

	resp, err := e.client.Do(req, def.Name)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Error = fmt.Sprintf("Request timeout after %ds", timeout)
		} else {
			result.Error = err.Error()
		}

		result.DurationMS = time.Since(started).Milliseconds()

		return result
	}

	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	duration := time.Since(started).Milliseconds()
	result.DurationMS = duration
	result.ResponseTimeMS = duration
	result.ResponseStatus = resp.StatusCode

	// A body that cannot be read to completion is a transport failure, even
	// when the status line already matched.
	if readErr != nil {
		result.Error = fmt.Sprintf("failed to read response body: %v", readErr)

		return result
	}

	if resp.StatusCode == expected {
		result.Status = suite.StatusPassed
	} else {
		result.Error = fmt.Sprintf("Expected %d, got %d", expected, resp.StatusCode)
	}

	// JSON validation overrides a matching status code.
	if def.ValidateJSON && !json.Valid(body) {
		result.Status = suite.StatusFailed
		result.Error = "Invalid JSON response"
	}

	return result
}

// buildRequest constructs the outbound request for a definition.
func (e *httpExecutor) buildRequest(ctx context.Context, def suite.Definition) (*http.Request, error) {
	method := strings.ToUpper(def.Method)

	switch method {
	case http.MethodGet, http.MethodDelete:
		return http.NewRequestWithContext(ctx, method, def.URL, nil)
	case http.MethodPost, http.MethodPut:
		req, err := http.NewRequestWithContext(ctx, method, def.URL, bytes.NewReader(def.Payload))
		if err != nil {
			return nil, err
		}

		if len(def.Payload) > 0 {
			req.Header.Set("Content-Type", "application/json")
		}

		return req, nil
	default:
		return nil, fmt.Errorf("Unsupported method: %s", def.Method)
	}
}
