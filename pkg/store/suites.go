package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
)

// SuiteArtifact represents a single artifact from a suite run: the summary
// JSON or the run-log transcript.
type SuiteArtifact struct {
	Environment string    `json:"environment"`
	SuiteID     string    `json:"suiteId"`
	Type        string    `json:"type"` // json, log
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Content     []byte    `json:"content"`
}

// SuitesRepo implements Repository for suite artifacts.
type SuitesRepo struct {
	BaseRepo
}

// NewSuitesRepo creates a new SuitesRepo.
func NewSuitesRepo(ctx context.Context, log *logrus.Logger, cfg *S3Config, metrics *Metrics) (*SuitesRepo, error) {
	baseRepo, err := NewBaseRepo(ctx, log, cfg, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create base repo: %w", err)
	}

	return &SuitesRepo{
		BaseRepo: baseRepo,
	}, nil
}

// List implements Repository[*SuiteArtifact].
func (s *SuitesRepo) List(ctx context.Context) ([]*SuiteArtifact, error) {
	defer s.trackDuration("list", "suites")()

	var (
		artifacts []*SuiteArtifact
		input     = &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(fmt.Sprintf("%s/suites/", s.prefix)),
		}
		paginator = s3.NewListObjectsV2Paginator(s.store, input)
	)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.observeOperation("list", "suites", err)

			return nil, fmt.Errorf("failed to list artifacts: %w", err)
		}

		for _, obj := range page.Contents {
			// Format: prefix/suites/{environment}/{suiteID}.{ext}
			parts := strings.Split(*obj.Key, "/")
			if len(parts) < 4 {
				continue
			}

			fileName := parts[len(parts)-1]
			environment := parts[len(parts)-2]

			var artifactType string

			switch {
			case strings.HasSuffix(fileName, ".json"):
				artifactType = "json"
			case strings.HasSuffix(fileName, ".log"):
				artifactType = "log"
			default:
				continue
			}

			artifacts = append(artifacts, &SuiteArtifact{
				Environment: environment,
				SuiteID:     strings.TrimSuffix(strings.TrimSuffix(fileName, ".json"), ".log"),
				Type:        artifactType,
				CreatedAt:   *obj.LastModified,
				UpdatedAt:   *obj.LastModified,
			})
		}
	}

	s.metrics.objectsTotal.WithLabelValues("suites").Set(float64(len(artifacts)))

	return artifacts, nil
}

// Persist implements Repository[*SuiteArtifact].
func (s *SuitesRepo) Persist(ctx context.Context, artifact *SuiteArtifact) error {
	defer s.trackDuration("persist", "suites")()

	put := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(artifact)),
	}

	if len(artifact.Content) > 0 {
		contentType := http.DetectContentType(artifact.Content)

		put.Body = bytes.NewReader(artifact.Content)
		put.ContentType = aws.String(contentType)

		s.metrics.objectSizeBytes.WithLabelValues("suites").Observe(float64(len(artifact.Content)))
	}

	if _, err := s.store.PutObject(ctx, put); err != nil {
		s.observeOperation("persist", "suites", err)

		return fmt.Errorf("failed to put artifact: %w", err)
	}

	s.observeOperation("persist", "suites", nil)

	return nil
}

// Purge implements Repository[*SuiteArtifact].
func (s *SuitesRepo) Purge(ctx context.Context, identifiers ...string) error {
	if len(identifiers) != 2 {
		return fmt.Errorf("expected environment and suiteID identifiers, got %d identifiers", len(identifiers))
	}

	var (
		environment, suiteID = identifiers[0], identifiers[1]
		prefix               = fmt.Sprintf("%s/suites/%s/%s", s.prefix, environment, suiteID)
		input                = &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		}
		paginator = s3.NewListObjectsV2Paginator(s.store, input)
	)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects for deletion: %w", err)
		}

		for _, obj := range page.Contents {
			if _, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return fmt.Errorf("failed to delete object %s: %w", *obj.Key, err)
			}
		}
	}

	return nil
}

// Key implements Repository[*SuiteArtifact].
func (s *SuitesRepo) Key(artifact *SuiteArtifact) string {
	if artifact == nil {
		s.log.Error("artifact is nil")

		return ""
	}

	return fmt.Sprintf("%s/suites/%s/%s.%s", s.prefix, artifact.Environment, artifact.SuiteID, artifact.Type)
}

// GetSummary retrieves and decodes the summary artifact for a suite run.
func (s *SuitesRepo) GetSummary(ctx context.Context, environment, suiteID string) (*suite.Summary, error) {
	defer s.trackDuration("get", "suites")()

	key := fmt.Sprintf("%s/suites/%s/%s.json", s.prefix, environment, suiteID)

	output, err := s.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.observeOperation("get", "suites", err)

		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		s.observeOperation("get", "suites", err)

		return nil, fmt.Errorf("failed to read summary content: %w", err)
	}

	var summary suite.Summary
	if err := json.Unmarshal(content, &summary); err != nil {
		s.observeOperation("get", "suites", err)

		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	s.observeOperation("get", "suites", nil)
	s.metrics.objectSizeBytes.WithLabelValues("suites").Observe(float64(len(content)))

	return &summary, nil
}

// PersistRun stores both artifacts of a suite run: the summary JSON and the
// run-log transcript.
func (s *SuitesRepo) PersistRun(ctx context.Context, summary *suite.Summary, runLog []byte) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	now := time.Now()

	if err := s.Persist(ctx, &SuiteArtifact{
		Environment: summary.Environment,
		SuiteID:     summary.SuiteID,
		Type:        "json",
		CreatedAt:   now,
		UpdatedAt:   now,
		Content:     data,
	}); err != nil {
		return err
	}

	if len(runLog) == 0 {
		return nil
	}

	return s.Persist(ctx, &SuiteArtifact{
		Environment: summary.Environment,
		SuiteID:     summary.SuiteID,
		Type:        "log",
		CreatedAt:   now,
		UpdatedAt:   now,
		Content:     runLog,
	})
}

// GetBucket returns the S3 bucket name.
func (s *SuitesRepo) GetBucket() string {
	return s.bucket
}

// GetPrefix returns the S3 prefix.
func (s *SuitesRepo) GetPrefix() string {
	return s.prefix
}
