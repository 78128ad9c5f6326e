package domain

import (
	"strconv"
	"strings"
	"time"
)

type CommandResult struct {
	Text            string
	ExitCode        int
	Interrupted     bool
	InterruptReason string
	Truncated       bool
	Duration        time.Duration
}

// CommandOutput trims captured output and falls back to the exit status when
// nothing printable was produced.
func CommandOutput(captured string, exitCode int) string {
	trimmed := strings.TrimSpace(captured)
	if trimmed == "" {
		return "Exit value " + strconv.Itoa(exitCode)
	}
	return trimmed
}

// InterruptedOutput keeps any partial output ahead of the interruption notice.
func InterruptedOutput(captured string, reason string) string {
	notice := "Process interrupted: " + reason
	trimmed := strings.TrimSpace(captured)
	if trimmed == "" {
		return notice
	}
	return trimmed + "\n" + notice
}
