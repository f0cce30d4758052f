package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
)

// Default base URLs of the universe tiers.
const (
	DefaultUniverseOfficial = "https://api.roblox.com"
	DefaultUniverseRoProxy  = "https://apis.roproxy.com"
	DefaultUniverseMultiget = "https://games.roblox.com"
)

// Universe tier names, in attempt order.
const (
	TierOfficial   = "official"
	TierRoProxy    = "roproxy"
	TierMultiget   = "multiget"
	TierRomMonitor = "rommonitor"
)

// UniverseTiers returns the universe id tiers in attempt order. bases may
// override the official, roproxy and multiget hosts by position.
func UniverseTiers(c *Client, bases []string) []resolver.UniverseTier {
	official := endpoint(bases, 0, DefaultUniverseOfficial)
	proxy := endpoint(bases, 1, DefaultUniverseRoProxy)
	multiget := endpoint(bases, 2, DefaultUniverseMultiget)

	return []resolver.UniverseTier{
		chain.Func(TierOfficial, func(ctx context.Context, placeID string) (int64, error) {
			var body struct {
				UniverseID int64 `json:"UniverseId"`
			}
			u := official + "/universes/get-universe-containing-place?placeId=" + url.QueryEscape(placeID)
			if err := c.GetJSON(ctx, u, &body); err != nil {
				return 0, err
			}
			return nonZero(body.UniverseID, placeID)
		}),
		chain.Func(TierRoProxy, func(ctx context.Context, placeID string) (int64, error) {
			var body struct {
				UniverseID int64 `json:"universeId"`
			}
			u := proxy + "/universes/v1/places/" + url.PathEscape(placeID) + "/universe"
			if err := c.GetJSON(ctx, u, &body); err != nil {
				return 0, err
			}
			return nonZero(body.UniverseID, placeID)
		}),
		chain.Func(TierMultiget, func(ctx context.Context, placeID string) (int64, error) {
			var body []struct {
				UniverseID int64 `json:"universeId"`
			}
			u := multiget + "/v1/games/multiget-place-details?placeIds=" + url.QueryEscape(placeID)
			if err := c.GetJSON(ctx, u, &body); err != nil {
				return 0, err
			}
			if len(body) == 0 {
				return 0, fmt.Errorf("%w: place %s", ErrNotFound, placeID)
			}
			return nonZero(body[0].UniverseID, placeID)
		}),
	}
}

func nonZero(id int64, placeID string) (int64, error) {
	if id == 0 {
		return 0, fmt.Errorf("%w: place %s", ErrNotFound, placeID)
	}
	return id, nil
}
