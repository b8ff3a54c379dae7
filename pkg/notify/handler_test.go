package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snsEvent(messages ...string) events.SNSEvent {
	event := events.SNSEvent{}

	for _, msg := range messages {
		event.Records = append(event.Records, events.SNSEventRecord{
			SNS: events.SNSEntity{Message: msg},
		})
	}

	return event
}

func TestHandleSNSEvent(t *testing.T) {
	var delivered int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	handler := NewHandler(testLog(), NewNotifier(testLog(), server.URL))

	payload, err := json.Marshal(failingSummary())
	require.NoError(t, err)

	err = handler.HandleSNSEvent(context.Background(), snsEvent(string(payload)))

	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestHandleSNSEventBadPayload(t *testing.T) {
	handler := NewHandler(testLog(), NewNotifier(testLog(), ""))

	err := handler.HandleSNSEvent(context.Background(), snsEvent("{not json"))

	// A corrupt message cannot become a notification; the hosting trigger
	// must see the failure so queue retry semantics apply.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode suite summary")
}

func TestHandleSNSEventWebhookFailureIsNotSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	handler := NewHandler(testLog(), NewNotifier(testLog(), server.URL))

	payload, err := json.Marshal(failingSummary())
	require.NoError(t, err)

	assert.NoError(t, handler.HandleSNSEvent(context.Background(), snsEvent(string(payload))))
}
