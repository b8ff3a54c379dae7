package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
)

// Handler processes queue-delivered suite summaries. It is hosted by the
// notifier Lambda; the queue pushes deliveries in, nothing is polled.
type Handler struct {
	notifier *Notifier
	log      *logrus.Logger
}

// NewHandler creates a new Handler.
func NewHandler(log *logrus.Logger, notifier *Notifier) *Handler {
	return &Handler{
		notifier: notifier,
		log:      log,
	}
}

// HandleSNSEvent processes one delivery. A payload that cannot be decoded is
// the one error we surface: the hosting trigger marks the delivery failed
// and the queue's retry semantics take over. Everything downstream of a
// decoded summary is best-effort.
func (h *Handler) HandleSNSEvent(ctx context.Context, event events.SNSEvent) error {
	for _, record := range event.Records {
		var summary suite.Summary
		if err := json.Unmarshal([]byte(record.SNS.Message), &summary); err != nil {
			return fmt.Errorf("failed to decode suite summary: %w", err)
		}

		h.log.WithFields(logrus.Fields{
			"suite_id": summary.SuiteID,
			"total":    summary.TotalTests,
			"failed":   summary.FailedTests,
		}).Info("Processing suite summary")

		h.notifier.Send(ctx, &summary)
	}

	return nil
}
