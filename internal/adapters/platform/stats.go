package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	"golang.org/x/sync/errgroup"
)

// Default base URLs of the statistics tiers.
const (
	DefaultStatsOfficial   = "https://games.roblox.com"
	DefaultStatsRomMonitor = "https://api.rommonitor.com"
	DefaultStatsRoProxy    = "https://games.roproxy.com"
)

type gameDoc struct {
	ID          int64          `json:"id"`
	RootPlaceID int64          `json:"rootPlaceId"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Creator     *model.Creator `json:"creator"`
	Playing     int64          `json:"playing"`
	Visits      int64          `json:"visits"`
	MaxPlayers  int            `json:"maxPlayers"`
	Created     string         `json:"created"`
	Updated     string         `json:"updated"`
}

type votesDoc struct {
	ID        int64 `json:"id"`
	UpVotes   int64 `json:"upVotes"`
	DownVotes int64 `json:"downVotes"`
}

type romMonitorDoc struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	CurrentPlayers int64  `json:"currentPlayers"`
	TotalVisits    int64  `json:"totalVisits"`
	MaxPlayers     int    `json:"maxPlayers"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	Likes          int64  `json:"likes"`
	Dislikes       int64  `json:"dislikes"`
}

// StatsTiers returns the statistics tiers in attempt order. bases may
// override the official, rommonitor and roproxy hosts by position.
func StatsTiers(c *Client, bases []string) []resolver.StatsTier {
	official := endpoint(bases, 0, DefaultStatsOfficial)
	monitor := endpoint(bases, 1, DefaultStatsRomMonitor)
	proxy := endpoint(bases, 2, DefaultStatsRoProxy)

	return []resolver.StatsTier{
		chain.Func(TierOfficial, func(ctx context.Context, q resolver.StatsQuery) (resolver.Stats, error) {
			return gamesAPI(ctx, c, official, q, model.SourceOfficial)
		}),
		chain.Func(TierRomMonitor, func(ctx context.Context, q resolver.StatsQuery) (resolver.Stats, error) {
			return romMonitor(ctx, c, monitor, q)
		}),
		chain.Func(TierRoProxy, func(ctx context.Context, q resolver.StatsQuery) (resolver.Stats, error) {
			return gamesAPI(ctx, c, proxy, q, model.SourceRoProxy)
		}),
	}
}

// gamesAPI fetches the game record and its votes in parallel. Only a missing
// game record fails the tier; votes are optional.
func gamesAPI(ctx context.Context, c *Client, base string, q resolver.StatsQuery, src model.SourceTag) (resolver.Stats, error) {
	id := url.QueryEscape(strconv.FormatInt(q.UniverseID, 10))

	var (
		games struct {
			Data []gameDoc `json:"data"`
		}
		votes struct {
			Data []votesDoc `json:"data"`
		}
		votesErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.GetJSON(gctx, base+"/v1/games?universeIds="+id, &games)
	})
	g.Go(func() error {
		votesErr = c.GetJSON(gctx, base+"/v1/games/votes?universeIds="+id, &votes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return resolver.Stats{}, err
	}
	if len(games.Data) == 0 {
		return resolver.Stats{}, fmt.Errorf("%w: universe %d", ErrNotFound, q.UniverseID)
	}

	doc := games.Data[0]
	out := resolver.Stats{
		Source: src,
		Game: resolver.GameStats{
			ID:          doc.ID,
			Name:        doc.Name,
			Description: doc.Description,
			Playing:     doc.Playing,
			Visits:      doc.Visits,
			MaxPlayers:  doc.MaxPlayers,
			Created:     parseTime(doc.Created),
			Updated:     parseTime(doc.Updated),
			Creator:     doc.Creator,
		},
	}
	if votesErr == nil && len(votes.Data) > 0 {
		out.Votes = &resolver.Votes{UpVotes: votes.Data[0].UpVotes, DownVotes: votes.Data[0].DownVotes}
	}
	return out, nil
}

func romMonitor(ctx context.Context, c *Client, base string, q resolver.StatsQuery) (resolver.Stats, error) {
	var doc romMonitorDoc
	if err := c.GetJSON(ctx, base+"/v1/game/"+url.PathEscape(q.PlaceID), &doc); err != nil {
		return resolver.Stats{}, err
	}
	return resolver.Stats{
		Source: model.SourceRomMonitor,
		Game: resolver.GameStats{
			ID:          q.UniverseID,
			Name:        doc.Name,
			Description: doc.Description,
			Playing:     doc.CurrentPlayers,
			Visits:      doc.TotalVisits,
			MaxPlayers:  doc.MaxPlayers,
			Created:     parseTime(doc.Created),
			Updated:     parseTime(doc.Updated),
		},
		Votes: &resolver.Votes{UpVotes: doc.Likes, DownVotes: doc.Dislikes},
	}, nil
}
