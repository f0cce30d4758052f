// Package resolver turns game references into enriched GameRecords using
// tiered live sources and a static fallback table.
package resolver

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/catalog"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultLiveBudget bounds the live lookups of one Resolve or ResolveOne
// call. References still unresolved when it runs out use the fallback table.
const DefaultLiveBudget = 20 * time.Second

// Resolver resolves references concurrently. It keeps no state between calls.
type Resolver struct {
	catalog     *catalog.Catalog
	universe    []UniverseTier
	stats       []StatsTier
	logger      logger.Logger
	now         func() time.Time
	concurrency int
	liveBudget  time.Duration
}

// New creates a Resolver over the given catalog. Without tiers every
// reference goes straight to the fallback table.
func New(c *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:    c,
		logger:     logger.Nop(),
		now:        time.Now,
		liveBudget: DefaultLiveBudget,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fans out over refs, drops the ones no tier can resolve and sorts the
// rest descending by the ranking key. Ties keep the order of refs. The error
// is non-nil only when ctx ended; the partial result is still returned.
// Exhausting the live budget is not an error.
func (r *Resolver) Resolve(ctx context.Context, refs []string, rank Ranking) (Result, error) {
	start := time.Now()
	slots := make([]*model.GameRecord, len(refs))
	liveCtx, cancel := context.WithTimeout(ctx, r.liveBudget)
	defer cancel()

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, ref := range refs {
		g.Go(func() error {
			if rec, ok := r.resolveOne(ctx, liveCtx, ref); ok {
				slots[i] = &rec
			}
			return nil
		})
	}
	_ = g.Wait()

	games := make([]model.GameRecord, 0, len(refs))
	for _, rec := range slots {
		if rec != nil {
			games = append(games, *rec)
		}
	}
	SortGames(games, rank)

	res := Result{
		Games:     games,
		Count:     len(games),
		Dropped:   len(refs) - len(games),
		Timestamp: r.now().UTC(),
	}
	metrics.RecordResolve(float64(time.Since(start).Milliseconds()), res.Count, res.Dropped)
	r.logger.Info(ctx, "resolved game references",
		logger.Int("requested", len(refs)),
		logger.Int("resolved", res.Count),
		logger.Int("dropped", res.Dropped),
		logger.String("rank", string(rank)),
	)
	return res, ctx.Err()
}

// ResolveOne resolves a single reference. The bool is false when the
// reference has no extractable id or neither live tiers nor the fallback
// table know it.
func (r *Resolver) ResolveOne(ctx context.Context, ref string) (model.GameRecord, bool) {
	liveCtx, cancel := context.WithTimeout(ctx, r.liveBudget)
	defer cancel()
	return r.resolveOne(ctx, liveCtx, ref)
}

// resolveOne consults live tiers under liveCtx only, so a spent budget still
// leaves the fallback table.
func (r *Resolver) resolveOne(ctx, liveCtx context.Context, ref string) (model.GameRecord, bool) {
	placeID, ok := catalog.ExtractPlaceID(ref)
	if !ok {
		r.logger.Warn(ctx, "dropping reference without place id", logger.String("ref", ref))
		return model.GameRecord{}, false
	}
	placeNum, err := strconv.ParseInt(placeID, 10, 64)
	if err != nil {
		r.logger.Warn(ctx, "dropping reference with oversized place id", logger.String("ref", ref))
		return model.GameRecord{}, false
	}

	rec, ok := r.resolveLive(liveCtx, placeID)
	if ok {
		rec = r.fromStats(rec, placeNum)
	} else {
		fb, found := r.catalog.Fallback(placeID)
		if !found {
			r.logger.Warn(ctx, "dropping unresolvable reference", logger.String("placeId", placeID))
			return model.GameRecord{}, false
		}
		rec = r.fromFallback(fb, placeNum)
	}

	rec.GameURL = ref
	rec.PlaceID = placeID
	if thumb, ok := r.catalog.Thumbnail(placeID); ok {
		rec.ThumbnailReference = &thumb
	}
	rec.IsActive = rec.ConcurrentUsers > 0
	metrics.RecordGameSource(string(rec.SourceTag))
	return rec, true
}

func (r *Resolver) resolveLive(ctx context.Context, placeID string) (model.GameRecord, bool) {
	if len(r.universe) == 0 || len(r.stats) == 0 {
		return model.GameRecord{}, false
	}

	uni, err := chain.Run(ctx, r.universe, placeID, r.observer(metrics.PipelineUniverse, placeID))
	if err != nil {
		r.logger.Warn(ctx, "universe id unavailable", logger.String("placeId", placeID), logger.Error(err))
		return model.GameRecord{}, false
	}

	q := StatsQuery{UniverseID: uni.Value, PlaceID: placeID}
	out, err := chain.Run(ctx, r.validStats(), q, r.observer(metrics.PipelineStats, placeID))
	if err != nil {
		r.logger.Warn(ctx, "statistics unavailable", logger.String("placeId", placeID), logger.Error(err))
		return model.GameRecord{}, false
	}

	r.logger.Debug(ctx, "statistics resolved",
		logger.String("placeId", placeID),
		logger.String("source", string(out.Value.Source)),
	)
	return statsToRecord(out.Value, uni.Value), true
}

// validStats wraps every statistics tier so a record without a name counts as
// that tier failing.
func (r *Resolver) validStats() []StatsTier {
	tiers := make([]StatsTier, len(r.stats))
	for i, t := range r.stats {
		tiers[i] = chain.Func(t.Name(), func(ctx context.Context, q StatsQuery) (Stats, error) {
			s, err := t.Attempt(ctx, q)
			if err != nil {
				return Stats{}, err
			}
			if s.Game.Name == "" {
				return Stats{}, ErrEmptyRecord
			}
			return s, nil
		})
	}
	return tiers
}

func (r *Resolver) observer(pipeline, placeID string) chain.Observer {
	return func(ctx context.Context, a chain.Attempt) {
		metrics.RecordTierAttempt(pipeline, a.Tier, a.OK(), float64(a.Duration.Milliseconds()))
		if !a.OK() {
			r.logger.Debug(ctx, "tier failed",
				logger.String("pipeline", pipeline),
				logger.String("tier", a.Tier),
				logger.String("placeId", placeID),
				logger.Error(a.Err),
			)
		}
	}
}

func statsToRecord(s Stats, universeID int64) model.GameRecord {
	rec := model.GameRecord{
		ExternalID:      s.Game.ID,
		DisplayName:     s.Game.Name,
		Description:     s.Game.Description,
		ConcurrentUsers: s.Game.Playing,
		TotalVisits:     s.Game.Visits,
		MaxCapacity:     s.Game.MaxPlayers,
		CreatedAt:       s.Game.Created,
		UpdatedAt:       s.Game.Updated,
		SourceTag:       s.Source,
		QualityScore:    -1,
	}
	if rec.ExternalID == 0 {
		rec.ExternalID = universeID
	}
	if s.Game.Creator != nil {
		rec.Creator = *s.Game.Creator
	}
	if s.Votes != nil {
		if total := s.Votes.UpVotes + s.Votes.DownVotes; total > 0 {
			rec.QualityScore = float64(s.Votes.UpVotes) / float64(total) * 100
		}
	}
	return rec
}

// fromStats fills whatever the live source left empty from catalog defaults.
func (r *Resolver) fromStats(rec model.GameRecord, placeNum int64) model.GameRecord {
	d := r.catalog.Defaults()
	rec.RootReferenceID = placeNum
	if rec.ExternalID == 0 {
		rec.ExternalID = placeNum
	}
	if rec.Description == "" {
		rec.Description = d.Description
	}
	if rec.ConcurrentUsers < 0 {
		rec.ConcurrentUsers = 0
	}
	if rec.TotalVisits < 0 {
		rec.TotalVisits = 0
	}
	if rec.MaxCapacity <= 0 {
		rec.MaxCapacity = d.MaxPlayers
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.Created
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = d.Updated
	}
	if rec.Creator.Name == "" {
		rec.Creator = d.Creator
	}
	if rec.QualityScore < 0 {
		rec.QualityScore = d.Rating
	}
	rec.Genre = d.Genre
	return rec
}

func (r *Resolver) fromFallback(fb catalog.Entry, placeNum int64) model.GameRecord {
	d := r.catalog.Defaults()
	return model.GameRecord{
		ExternalID:      placeNum,
		DisplayName:     fb.Name,
		Description:     fb.Description,
		RootReferenceID: placeNum,
		ConcurrentUsers: fb.Playing,
		TotalVisits:     fb.Visits,
		MaxCapacity:     d.MaxPlayers,
		CreatedAt:       d.Created,
		UpdatedAt:       d.Updated,
		Creator:         d.Creator,
		Genre:           d.Genre,
		QualityScore:    fb.Rating,
		SourceTag:       model.SourceFallback,
	}
}

// SortGames sorts in place, descending by the ranking key, keeping the
// existing order between equal keys.
func SortGames(games []model.GameRecord, rank Ranking) {
	key := func(g model.GameRecord) int64 { return g.ConcurrentUsers }
	if rank == RankByVisits {
		key = func(g model.GameRecord) int64 { return g.TotalVisits }
	}
	slices.SortStableFunc(games, func(a, b model.GameRecord) int {
		return cmp.Compare(key(b), key(a))
	})
}
