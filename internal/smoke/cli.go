package smoke

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging logs to stdout and, when logFile is not "-", to a file as
// well. An empty logFile gets a timestamped name.
func SetupLogging(logFile string) error {
	if logFile == "-" {
		return logger.Init()
	}
	if logFile == "" {
		logFile = "smoke_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	return logger.InitWriter(io.MultiWriter(os.Stdout, file), "text")
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Studio Site Smoke Check
=======================

Probes a running site: health, both game rankings, the hero background and
the studio totals, and checks they agree with each other.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the site (default "http://localhost:3000")
  -requests int
        Game list requests per ranking (default 5)
  -workers int
        Concurrent requests (default 4)
  -timeout duration
        HTTP request timeout (default 20s)
  -contact
        Also submit one contact form (sends real mail when configured)
  -log string
        Log file, "-" for stdout only (default: smoke_log_TIMESTAMP.log)
  -verbose
        List every resolved game
  -help
        Show this help message
`)
}
