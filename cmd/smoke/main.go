package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/smoke"
)

// Default configuration constants.
const (
	defaultRequests = 5
	defaultWorkers  = 4
	defaultTimeout  = 20 * time.Second
	defaultDeadline = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:3000", "Base URL of the site")
		requests = flag.Int("requests", defaultRequests, "Game list requests per ranking")
		workers  = flag.Int("workers", defaultWorkers, "Concurrent requests")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		contact  = flag.Bool("contact", false, "Also submit one contact form")
		logFile  = flag.String("log", "", `Log file, "-" for stdout only`)
		verbose  = flag.Bool("verbose", false, "List every resolved game")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDeadline)
	defer cancel()

	cfg := &smoke.Config{
		BaseURL:  *baseURL,
		Requests: *requests,
		Workers:  *workers,
		Timeout:  *timeout,
		Contact:  *contact,
		Verbose:  *verbose,
	}
	if _, err := smoke.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Smoke check failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
