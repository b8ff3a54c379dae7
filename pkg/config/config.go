package config

import (
	"fmt"
	"os"

	"github.com/probeops/api-pulse/pkg/store"
	"github.com/probeops/api-pulse/pkg/suite"
)

const defaultResultsFile = "test_results.json"

// Config contains the process configuration for the runner. Everything is
// optional: with no environment set at all the suite still runs, it just
// skips publishing and artifact upload.
type Config struct {
	ResultsTopicARN string // SNS topic the summary is published to.
	WebhookURL      string
	ResultsFile     string

	// CI metadata stamped onto the summary.
	GitCommit        string
	GitBranch        string
	GitHubRunID      string
	GitHubRepository string

	// S3 artifact storage. Disabled when Bucket is empty.
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3BucketPrefix  string
	S3Region        string
	S3EndpointURL   string
}

// FromEnv builds the runner configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		ResultsTopicARN:  os.Getenv("RESULTS_TOPIC_ARN"),
		WebhookURL:       os.Getenv("SLACK_WEBHOOK_URL"),
		ResultsFile:      envOr("RESULTS_FILE", defaultResultsFile),
		GitCommit:        envOr("GITHUB_SHA", "unknown"),
		GitBranch:        envOr("GITHUB_REF", "unknown"),
		GitHubRunID:      envOr("GITHUB_RUN_ID", "unknown"),
		GitHubRepository: envOr("GITHUB_REPOSITORY", "unknown"),
		AccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3BucketPrefix:   envOr("S3_BUCKET_PREFIX", store.DefaultBucketPrefix),
		S3Region:         envOr("S3_REGION", store.DefaultRegion),
		S3EndpointURL:    os.Getenv("S3_ENDPOINT_URL"),
	}
}

// AsS3Config converts the configuration to an S3Config.
func (c *Config) AsS3Config() *store.S3Config {
	return &store.S3Config{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Bucket:          c.S3Bucket,
		Prefix:          c.S3BucketPrefix,
		Region:          c.S3Region,
		EndpointURL:     c.S3EndpointURL,
	}
}

// AsGitMetadata converts the configuration to the git metadata stamped onto
// summaries.
func (c *Config) AsGitMetadata() suite.GitMetadata {
	return suite.GitMetadata{
		Commit:     c.GitCommit,
		Branch:     c.GitBranch,
		RunID:      c.GitHubRunID,
		Repository: c.GitHubRepository,
	}
}

// ArtifactsEnabled reports whether S3 artifact upload is configured.
func (c *Config) ArtifactsEnabled() bool {
	return c.S3Bucket != ""
}

// Validate checks the configuration for inconsistencies. Missing optional
// integrations are fine; a half-configured one is not.
func (c *Config) Validate() error {
	if c.S3Bucket != "" && (c.AccessKeyID == "" || c.SecretAccessKey == "") {
		return fmt.Errorf("S3_BUCKET is set but AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY are missing")
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
