package smoke

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run probes a running site and checks its pipelines agree with each other.
// Visit counts only grow, so the hero and summary checks accept totals at or
// above those of the listing fetched just before them.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Sources: map[string]int{}}
	log := logger.Get()
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting site smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Bool("contact", cfg.Contact))

	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	if err := probeGames(ctx, client, cfg, stats); err != nil {
		return stats, err
	}

	var byVisits GamesResponse
	if err := client.getJSON(ctx, "/api/games?rank=visits", &byVisits); err != nil {
		return stats, err
	}
	var hero HeroResponse
	if err := client.getJSON(ctx, "/api/hero-background", &hero); err != nil {
		return stats, err
	}
	if err := verifyHero(hero, byVisits.Games); err != nil {
		return stats, err
	}
	var sum SummaryResponse
	if err := client.getJSON(ctx, "/api/stats", &sum); err != nil {
		return stats, err
	}
	if err := verifySummary(sum, byVisits.Games); err != nil {
		return stats, err
	}

	if cfg.Contact {
		if err := submitContact(ctx, client, stats); err != nil {
			return stats, err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats, byVisits.Games, cfg.Verbose)
	return stats, nil
}

// probeGames fetches both rankings Requests times each and verifies every
// response.
func probeGames(ctx context.Context, client *HTTPClient, cfg *Config, stats *Stats) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for i := 0; i < max(cfg.Requests, 1); i++ {
		for _, rank := range []string{"ccu", "visits"} {
			g.Go(func() error {
				var res GamesResponse
				err := client.getJSON(gctx, "/api/games?rank="+rank, &res)
				if err == nil {
					err = verifyGames(res, rank)
				}

				mu.Lock()
				defer mu.Unlock()
				stats.RequestsSent++
				if err != nil {
					stats.RequestsFailed++
					return err
				}
				for _, game := range res.Games {
					stats.Sources[game.Source]++
				}
				return nil
			})
		}
	}
	return g.Wait()
}

func submitContact(ctx context.Context, client *HTTPClient, stats *Stats) error {
	body := map[string]string{
		"name":        "Smoke Test",
		"email":       "smoke@example.com",
		"serviceType": "general",
		"subject":     "Smoke test " + time.Now().UTC().Format(time.RFC3339),
		"message":     "Automated submission from the site smoke check.",
	}
	var res ContactResponse
	if err := client.postJSON(ctx, "/api/contact", body, &res); err != nil {
		return err
	}
	if res.SubmissionID == "" {
		return fmt.Errorf("%w: %s", ErrNotDelivered, res.Message)
	}
	stats.ContactMethod = res.Method
	if res.Error != "" {
		logger.Get().Warn(ctx, "contact stored but not delivered",
			logger.String("submissionId", res.SubmissionID), logger.String("error", res.Error))
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats, games []Game, verbose bool) {
	if verbose {
		for i, g := range games {
			log.Info(ctx, "game",
				logger.Int("rank", i+1),
				logger.String("name", g.Name),
				logger.Int64("visits", g.Visits),
				logger.Int64("playing", g.Playing),
				logger.String("source", g.Source))
		}
	}
	log.Info(ctx, "final statistics",
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Any("sources", stats.Sources),
		logger.String("contactMethod", stats.ContactMethod),
		logger.String("duration", stats.Duration.String()))
}
