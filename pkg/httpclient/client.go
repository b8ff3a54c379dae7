package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ClientWrapper wraps an HTTP client with metrics instrumentation. Per-test
// deadlines are carried on the request context, so the underlying client
// itself has no timeout set.
type ClientWrapper struct {
	client  *http.Client
	metrics *Metrics
	log     *logrus.Logger
}

// NewClientWrapper creates a new HTTP client wrapper with metrics.
func NewClientWrapper(client *http.Client, metrics *Metrics, log *logrus.Logger) *ClientWrapper {
	if client == nil {
		client = &http.Client{}
	}

	return &ClientWrapper{
		client:  client,
		metrics: metrics,
		log:     log,
	}
}

// Do executes an HTTP request with metrics tracking. The test label ends up
// on every metric series, so callers pass the test name rather than a URL.
func (c *ClientWrapper) Do(req *http.Request, test string) (*http.Response, error) {
	startTime := time.Now()

	// Record the request.
	c.metrics.RecordRequest(test, req.Method)

	// Execute the request.
	resp, err := c.client.Do(req)

	// Record request duration.
	duration := time.Since(startTime).Seconds()
	c.metrics.ObserveDuration(test, req.Method, duration)

	// Handle errors.
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"test":     test,
			"error":    err,
			"url":      req.URL.String(),
			"method":   req.Method,
			"duration": duration,
		}).Error("Test request failed")

		c.metrics.RecordError(test, req.Method, "network_error")

		return nil, err
	}

	// Check for HTTP errors.
	if resp.StatusCode >= 400 {
		errType := fmt.Sprintf("http_%d", resp.StatusCode)

		c.log.WithFields(logrus.Fields{
			"test":        test,
			"status_code": resp.StatusCode,
			"url":         req.URL.String(),
			"method":      req.Method,
			"duration":    duration,
		}).Debug("Test request returned error status")

		c.metrics.RecordError(test, req.Method, errType)
	}

	return resp, nil
}

// Client returns the underlying HTTP client.
func (c *ClientWrapper) Client() *http.Client {
	return c.client
}
