package smoke

import (
	"errors"
	"fmt"
)

// Check failures.
var (
	ErrStatus       = errors.New("unexpected status")
	ErrEmpty        = errors.New("no games resolved")
	ErrOrder        = errors.New("games out of order")
	ErrCount        = errors.New("count does not match games")
	ErrHero         = errors.New("hero does not match top game")
	ErrSummary      = errors.New("summary does not match games")
	ErrNotDelivered = errors.New("contact not accepted")
)

// verifyGames checks one /api/games response against its ranking.
func verifyGames(res GamesResponse, rank string) error {
	if !res.Success || len(res.Games) == 0 {
		return ErrEmpty
	}
	if res.Count != len(res.Games) {
		return fmt.Errorf("%w: count %d, %d games", ErrCount, res.Count, len(res.Games))
	}
	key := func(g Game) int64 { return g.Playing }
	if rank == "visits" {
		key = func(g Game) int64 { return g.Visits }
	}
	for i := 1; i < len(res.Games); i++ {
		if key(res.Games[i]) > key(res.Games[i-1]) {
			return fmt.Errorf("%w by %s: %q ranks below %q", ErrOrder, rank,
				res.Games[i-1].Name, res.Games[i].Name)
		}
	}
	return nil
}

// verifyHero checks the hero names the most visited game.
func verifyHero(hero HeroResponse, byVisits []Game) error {
	if len(byVisits) == 0 {
		if hero.Success {
			return fmt.Errorf("%w: hero reported a game with no games resolved", ErrHero)
		}
		return nil
	}
	top := byVisits[0]
	if !hero.Success || hero.GameName != top.Name || hero.VisitCount < top.Visits {
		return fmt.Errorf("%w: hero %q (%d visits), top %q (%d visits)", ErrHero,
			hero.GameName, hero.VisitCount, top.Name, top.Visits)
	}
	return nil
}

// verifySummary checks the studio totals cover the listed games.
func verifySummary(sum SummaryResponse, games []Game) error {
	var visits int64
	for _, g := range games {
		visits += g.Visits
	}
	if !sum.Success || sum.Projects != len(games) || sum.TotalVisits < visits {
		return fmt.Errorf("%w: %d projects, %d visits; games add to %d, %d", ErrSummary,
			sum.Projects, sum.TotalVisits, len(games), visits)
	}
	return nil
}
