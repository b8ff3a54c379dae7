package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/probeops/api-pulse/pkg/publish/mock"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params

	if f.err != nil {
		return nil, f.err
	}

	return &sns.PublishOutput{}, nil
}

func TestSNSPublisherPublish(t *testing.T) {
	fake := &fakeSNS{}
	pub := NewSNSPublisherWithClient(fake, testLog(), "arn:aws:sns:us-east-1:123456789012:api-test-results")

	summary := &suite.Summary{
		SuiteID:     "suite-test",
		TotalTests:  2,
		PassedTests: 2,
		SuccessRate: 100.0,
	}

	require.NoError(t, pub.Publish(context.Background(), summary))
	require.NotNil(t, fake.input)

	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:api-test-results", *fake.input.TopicArn)

	var decoded suite.Summary
	require.NoError(t, json.Unmarshal([]byte(*fake.input.Message), &decoded))
	assert.Equal(t, "suite-test", decoded.SuiteID)
	assert.Equal(t, 2, decoded.TotalTests)

	attr, ok := fake.input.MessageAttributes["suite_id"]
	require.True(t, ok)
	assert.Equal(t, "suite-test", *attr.StringValue)
}

func TestSNSPublisherPublishError(t *testing.T) {
	fake := &fakeSNS{err: errors.New("topic gone")}
	pub := NewSNSPublisherWithClient(fake, testLog(), "arn:topic")

	err := pub.Publish(context.Background(), &suite.Summary{SuiteID: "suite-test"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish summary")
}

func TestBestEffortNilPublisher(t *testing.T) {
	// No publisher wired, whatever the reason: log and return, never a
	// failure. The message stays neutral since the caller may have failed to
	// build a publisher with the topic ARN set.
	var buf bytes.Buffer

	log := logrus.New()
	log.SetOutput(&buf)

	BestEffort(context.Background(), log, nil, &suite.Summary{SuiteID: "suite-test"})

	assert.Contains(t, buf.String(), "No results publisher configured")
}

func TestBestEffortSwallowsPublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summary := &suite.Summary{SuiteID: "suite-test"}

	pub := mock.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), summary).Return(errors.New("queue unreachable"))

	BestEffort(context.Background(), testLog(), pub, summary)
}

func TestBestEffortDelegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summary := &suite.Summary{SuiteID: "suite-test"}

	pub := mock.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), summary).Return(nil)

	BestEffort(context.Background(), testLog(), pub, summary)
}
