package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/probeops/api-pulse/pkg/notify"
	"github.com/sirupsen/logrus"
)

// The notifier is the downstream half of the pipeline: it receives suite
// summaries pushed off the results topic and posts a formatted notification
// to the configured webhook.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	notifier := notify.NewNotifier(log, os.Getenv("SLACK_WEBHOOK_URL"))
	handler := notify.NewHandler(log, notifier)

	lambda.Start(handler.HandleSNSEvent)
}
