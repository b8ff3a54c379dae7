package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/probeops/api-pulse/pkg/suite"
)

// WriteLocal writes the summary to a local file for debugging. Callers treat
// a failure here as log-and-continue; it never affects the run outcome.
func WriteLocal(path string, summary *suite.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary to %s: %w", path, err)
	}

	return nil
}
