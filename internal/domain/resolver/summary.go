package resolver

import (
	"context"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Summary aggregates the portfolio for the studio stats banner.
type Summary struct {
	Projects       int    `json:"totalProjects"`
	ActiveProjects int    `json:"activeProjects"`
	TotalVisits    int64  `json:"totalVisits"`
	TotalPlaying   int64  `json:"totalPlaying"`
	VisitsDisplay  string `json:"visitsDisplay"`
	PlayingDisplay string `json:"playingDisplay"`
	VisitsGrouped  string `json:"visitsGrouped"`
	AverageRating  string `json:"averageRating"`
}

// Top resolves the catalog and returns its highest ranked record. The bool
// is false when nothing resolved.
func (r *Resolver) Top(ctx context.Context, rank Ranking) (model.GameRecord, bool, error) {
	res, err := r.Resolve(ctx, r.catalog.References(), rank)
	if len(res.Games) == 0 {
		return model.GameRecord{}, false, err
	}
	return res.Games[0], true, err
}

// Summary resolves the catalog and aggregates it.
func (r *Resolver) Summary(ctx context.Context) (Summary, error) {
	res, err := r.Resolve(ctx, r.catalog.References(), RankByVisits)
	return Summarize(res.Games), err
}

// Summarize aggregates already resolved records.
func Summarize(games []model.GameRecord) Summary {
	var s Summary
	var rating float64
	for _, g := range games {
		s.Projects++
		if g.IsActive {
			s.ActiveProjects++
		}
		s.TotalVisits += g.TotalVisits
		s.TotalPlaying += g.ConcurrentUsers
		rating += g.QualityScore
	}
	s.VisitsDisplay = FormatCount(s.TotalVisits)
	s.PlayingDisplay = FormatCount(s.TotalPlaying)
	s.VisitsGrouped = printer.Sprintf("%d", s.TotalVisits)
	if s.Projects > 0 {
		s.AverageRating = printer.Sprintf("%.1f", rating/float64(s.Projects))
	} else {
		s.AverageRating = "0.0"
	}
	return s
}

// FormatCount renders n compactly with one decimal: 1.5K, 2.3M, 1.1B.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return printer.Sprintf("%.1fB", float64(n)/1e9)
	case n >= 1_000_000:
		return printer.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return printer.Sprintf("%.1fK", float64(n)/1e3)
	default:
		return printer.Sprintf("%d", n)
	}
}
