package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDetector(env map[string]string, paths map[string]bool) Detector {
	return &markerDetector{
		getenv:     func(key string) string { return env[key] },
		pathExists: func(path string) bool { return paths[path] },
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		paths    map[string]bool
		expected Label
	}{
		{
			name:     "explicit override wins",
			env:      map[string]string{"TEST_ENVIRONMENT": "minikube", "GITHUB_ACTIONS": "true"},
			expected: Label("minikube"),
		},
		{
			name:     "kubernetes secrets mount",
			paths:    map[string]bool{"/var/run/secrets/kubernetes.io": true},
			expected: LabelKubernetes,
		},
		{
			name:     "kubernetes service host",
			env:      map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"},
			expected: LabelKubernetes,
		},
		{
			name:     "github actions",
			env:      map[string]string{"GITHUB_ACTIONS": "true"},
			expected: LabelGitHubActions,
		},
		{
			name:     "docker marker",
			paths:    map[string]bool{"/.dockerenv": true},
			expected: LabelDocker,
		},
		{
			name:     "generic ci",
			env:      map[string]string{"CI": "true"},
			expected: LabelCI,
		},
		{
			name:     "nothing detected",
			expected: LabelLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, newTestDetector(tt.env, tt.paths).Detect())
		})
	}
}

func TestRunnerLabel(t *testing.T) {
	assert.Equal(t, "GitHub Actions Runner", RunnerLabel(LabelGitHubActions))
	assert.Equal(t, "Local Machine", RunnerLabel(LabelLocal))
	assert.Equal(t, "Unknown Environment", RunnerLabel(LabelUnknown))
	assert.Equal(t, "Unknown Environment (minikube)", RunnerLabel(Label("minikube")))
}
