// Package deps verifies the external tools the pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"chapterfind/internal/config"
)

// Requirement defines an external dependency chapterfind relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the configured tool binaries.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Silence detection, snippet extraction, and test-run truncation",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Source duration probing",
		},
		{
			Name:        "Whisper",
			Command:     cfg.Tools.Whisper,
			Description: "Snippet transcription (whisper-ctranslate2)",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Command = resolved
		results = append(results, status)
	}
	return results
}

// Missing returns the names of required dependencies that are unavailable.
func Missing(statuses []Status) []string {
	var names []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			names = append(names, status.Name)
		}
	}
	return names
}
