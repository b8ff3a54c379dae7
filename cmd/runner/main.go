package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/probeops/api-pulse/pkg/config"
	"github.com/probeops/api-pulse/pkg/environment"
	"github.com/probeops/api-pulse/pkg/executor"
	"github.com/probeops/api-pulse/pkg/httpclient"
	"github.com/probeops/api-pulse/pkg/publish"
	"github.com/probeops/api-pulse/pkg/store"
	"github.com/probeops/api-pulse/pkg/suite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const metricsNamespace = "apipulse"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.FromEnv()

	rootCmd := &cobra.Command{
		Use:          "api-pulse",
		Short:        "API smoke-test harness",
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured smoke tests once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), log, cfg)
		},
	}

	runCmd.Flags().StringVar(&cfg.ResultsFile, "results-file", cfg.ResultsFile, "path for the local summary artifact")

	rootCmd.AddCommand(runCmd, newArtifactsCmd(log, cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes the whole pipeline once: detect environment, load the plan,
// run the suite, persist artifacts, publish the summary. Only test outcomes
// decide the exit code; artifact and publish failures are logged and
// swallowed.
func run(ctx context.Context, log *logrus.Logger, cfg *config.Config) error {
	env := environment.NewDetector().Detect()

	info := suite.RunInfo{
		SuiteID:     suite.GenerateSuiteID(),
		Environment: env.String(),
		Runner:      environment.RunnerLabel(env),
	}

	log.WithFields(logrus.Fields{
		"suite_id":    info.SuiteID,
		"environment": info.Environment,
		"runner":      info.Runner,
	}).Info("Initializing smoke-test runner")

	client := httpclient.NewClientWrapper(nil, httpclient.NewMetrics(metricsNamespace), log)
	runner := suite.NewDefaultRunner(executor.New(client, log, info), info, cfg.AsGitMetadata())
	runner.RegisterDefinitions(config.LoadPlan(log)...)

	summary := runner.Run(ctx)

	// Local artifact, best-effort.
	if err := store.WriteLocal(cfg.ResultsFile, summary); err != nil {
		log.WithError(err).Warn("Could not save results locally")
	} else {
		log.WithField("path", cfg.ResultsFile).Info("Results saved locally")
	}

	// S3 artifacts, best-effort, only when configured.
	if cfg.ArtifactsEnabled() {
		persistArtifacts(ctx, log, cfg, runner, summary)
	}

	// Queue publish, best-effort.
	var pub publish.Publisher

	if cfg.ResultsTopicARN != "" {
		snsPub, err := publish.NewSNSPublisher(ctx, log, cfg.ResultsTopicARN)
		if err != nil {
			log.WithError(err).Error("Failed to create results publisher")
		} else {
			pub = snsPub
		}
	}

	publish.BestEffort(ctx, log, pub, summary)

	log.WithFields(logrus.Fields{
		"suite_id":     summary.SuiteID,
		"total":        summary.TotalTests,
		"passed":       summary.PassedTests,
		"failed":       summary.FailedTests,
		"success_rate": fmt.Sprintf("%.1f", summary.SuccessRate),
		"duration_ms":  summary.TotalDurationMS,
	}).Info("Suite complete")

	return verdict(summary)
}

// verdict translates test outcomes into the process exit code: a non-nil
// error makes cobra exit 1, nil exits 0. Nothing else in the pipeline is
// allowed to influence this.
func verdict(summary *suite.Summary) error {
	if summary.FailedTests > 0 {
		return fmt.Errorf("%d of %d tests failed", summary.FailedTests, summary.TotalTests)
	}

	return nil
}

// persistArtifacts uploads the summary and run log to S3.
func persistArtifacts(ctx context.Context, log *logrus.Logger, cfg *config.Config, runner suite.Runner, summary *suite.Summary) {
	repo, err := newSuitesRepo(ctx, log, cfg)
	if err != nil {
		log.WithError(err).Error("Failed to create suites repo")

		return
	}

	if err := repo.PersistRun(ctx, summary, runner.GetLog().GetBuffer().Bytes()); err != nil {
		log.WithError(err).Error("Failed to persist suite artifacts")

		return
	}

	log.WithField("suite_id", summary.SuiteID).Info("Suite artifacts persisted")
}

// newArtifactsCmd exposes the artifact store: list persisted runs, print a
// stored summary, purge a run's artifacts.
func newArtifactsCmd(log *logrus.Logger, cfg *config.Config) *cobra.Command {
	artifactsCmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect persisted suite artifacts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted suite artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := newSuitesRepo(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}

			artifacts, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"bucket": repo.GetBucket(),
				"prefix": repo.GetPrefix(),
				"count":  len(artifacts),
			}).Info("Listed suite artifacts")

			for _, artifact := range artifacts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					artifact.Environment, artifact.SuiteID, artifact.Type,
					artifact.CreatedAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <environment> <suite-id>",
		Short: "Print the stored summary of a suite run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := newSuitesRepo(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}

			summary, err := repo.GetSummary(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal summary: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return nil
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "purge <environment> <suite-id>",
		Short: "Delete all artifacts of a suite run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := newSuitesRepo(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}

			if err := repo.Purge(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"environment": args[0],
				"suite_id":    args[1],
			}).Info("Suite artifacts purged")

			return nil
		},
	}

	artifactsCmd.AddCommand(listCmd, showCmd, purgeCmd)

	return artifactsCmd
}

// newSuitesRepo builds the S3 artifact repository, requiring the store to be
// configured.
func newSuitesRepo(ctx context.Context, log *logrus.Logger, cfg *config.Config) (*store.SuitesRepo, error) {
	if !cfg.ArtifactsEnabled() {
		return nil, fmt.Errorf("S3_BUCKET is not configured")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return store.NewSuitesRepo(ctx, log, cfg.AsS3Config(), store.NewMetrics(metricsNamespace))
}
