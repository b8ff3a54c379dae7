package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -package mock -destination mock/publisher.mock.go github.com/probeops/api-pulse/pkg/publish Publisher

// Publisher hands a finished suite summary to the message queue. Delivery is
// best-effort from the runner's point of view; see BestEffort.
type Publisher interface {
	// Publish serializes the summary and delivers it to the results topic.
	Publish(ctx context.Context, summary *suite.Summary) error
}

// SNSAPI is the slice of the SNS client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes summaries to an SNS topic.
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	log      *logrus.Logger
}

// NewSNSPublisher creates a publisher for the given topic ARN using default
// AWS credential resolution.
func NewSNSPublisher(ctx context.Context, log *logrus.Logger, topicARN string) (*SNSPublisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SNSPublisher{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: topicARN,
		log:      log,
	}, nil
}

// NewSNSPublisherWithClient creates a publisher with an explicit SNS client.
func NewSNSPublisherWithClient(client SNSAPI, log *logrus.Logger, topicARN string) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		log:      log,
	}
}

// Publish serializes the summary and delivers it to the results topic.
func (p *SNSPublisher) Publish(ctx context.Context, summary *suite.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(data)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"suite_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(summary.SuiteID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"suite_id": summary.SuiteID,
		"topic":    p.topicARN,
	}).Info("Published suite summary")

	return nil
}

// BestEffort publishes the summary and swallows every failure. The run's
// exit code is decided by test outcomes alone; a missing topic or an
// unreachable queue only ever costs us the notification.
func BestEffort(ctx context.Context, log *logrus.Logger, pub Publisher, summary *suite.Summary) {
	if pub == nil {
		log.Warn("No results publisher configured, skipping publish")

		return
	}

	if err := pub.Publish(ctx, summary); err != nil {
		log.WithError(err).WithField("suite_id", summary.SuiteID).Error("Failed to publish suite summary")
	}
}
