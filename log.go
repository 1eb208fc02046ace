package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	if p := os.Getenv("VOXDEMO_LOG"); p != "" {
		return expandPath(p), nil
	}
	dir, err := gap.NewScope(gap.User, "voxdemo").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voxdemo.log"), nil
}

// setupLog sends logs to a file so they don't corrupt the TUI.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	// Log to file, if set
	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		// log disabled
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		// log disabled
		return func() error { return nil }, nil
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}

// logToStderr is used by the non-interactive commands.
func logToStderr() {
	log.SetOutput(os.Stderr)
}
