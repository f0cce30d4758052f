package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// UniverseTier resolves a place id to the universe id the statistics APIs need.
type UniverseTier = chain.Tier[string, int64]

// StatsQuery identifies the game a statistics tier should look up.
type StatsQuery struct {
	UniverseID int64
	PlaceID    string
}

// GameStats is a statistics provider's primary record, already normalized to
// common field names.
type GameStats struct {
	ID          int64
	Name        string
	Description string
	Playing     int64
	Visits      int64
	MaxPlayers  int
	Created     time.Time
	Updated     time.Time
	Creator     *model.Creator
}

// Votes is the up/down vote pair some providers return alongside the record.
type Votes struct {
	UpVotes   int64
	DownVotes int64
}

// Stats is what a statistics tier returns on success.
type Stats struct {
	Source model.SourceTag
	Game   GameStats
	Votes  *Votes
}

// StatsTier fetches statistics for a resolved universe.
type StatsTier = chain.Tier[StatsQuery, Stats]

// Ranking selects the sort key of a resolution.
type Ranking string

// Supported rankings.
const (
	RankByCCU    Ranking = "ccu"
	RankByVisits Ranking = "visits"
)

// ParseRanking maps a query value onto a Ranking; empty means CCU.
func ParseRanking(s string) (Ranking, error) {
	switch Ranking(strings.ToLower(strings.TrimSpace(s))) {
	case "", RankByCCU:
		return RankByCCU, nil
	case RankByVisits:
		return RankByVisits, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRanking, s)
	}
}

// Result is one resolution of a reference list.
type Result struct {
	Games     []model.GameRecord
	Count     int
	Dropped   int
	Timestamp time.Time
}
