package environment

import "os"

// Label identifies the runtime environment a suite was executed in.
type Label string

// Define the known environments.
const (
	LabelKubernetes    Label = "kubernetes"
	LabelGitHubActions Label = "github-actions"
	LabelDocker        Label = "docker-container"
	LabelCI            Label = "ci"
	LabelLocal         Label = "local-machine"
	LabelUnknown       Label = "unknown"
)

// String returns the label as a string.
func (l Label) String() string {
	return string(l)
}

// Detector determines the runtime environment. Detection is a heuristic
// convenience only; a failed probe degrades to a safe default and must never
// affect test execution.
type Detector interface {
	// Detect returns the environment label for the current process.
	Detect() Label
}

// markerDetector inspects filesystem markers and environment variables.
type markerDetector struct {
	getenv     func(string) string
	pathExists func(string) bool
}

// NewDetector creates the default marker-based detector.
func NewDetector() Detector {
	return &markerDetector{
		getenv: os.Getenv,
		pathExists: func(path string) bool {
			_, err := os.Stat(path)

			return err == nil
		},
	}
}

// Detect returns the environment label for the current process. An explicit
// TEST_ENVIRONMENT value always wins over inference.
func (d *markerDetector) Detect() Label {
	if override := d.getenv("TEST_ENVIRONMENT"); override != "" {
		return Label(override)
	}

	if d.pathExists("/var/run/secrets/kubernetes.io") {
		return LabelKubernetes
	}

	if d.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return LabelKubernetes
	}

	if d.getenv("GITHUB_ACTIONS") != "" {
		return LabelGitHubActions
	}

	if d.pathExists("/.dockerenv") {
		return LabelDocker
	}

	if d.getenv("CI") != "" {
		return LabelCI
	}

	return LabelLocal
}

// RunnerLabel maps an environment label to the human-readable runner string
// recorded on summaries and shown in notifications.
func RunnerLabel(l Label) string {
	switch l {
	case LabelKubernetes:
		return "Kubernetes (Test Runner)"
	case LabelDocker:
		return "Docker Container (Test Runner)"
	case LabelGitHubActions:
		return "GitHub Actions Runner"
	case LabelCI:
		return "CI Runner"
	case LabelLocal:
		return "Local Machine"
	case LabelUnknown:
		return "Unknown Environment"
	default:
		return "Unknown Environment (" + l.String() + ")"
	}
}
