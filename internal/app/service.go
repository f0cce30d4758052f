// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/mail"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/platform"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/repository"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/config"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/catalog"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/metrics"
	"github.com/google/uuid"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the studio site.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	catalog    *catalog.Catalog
	resolver   *resolver.Resolver
	dispatcher *notify.Dispatcher
	games      repository.GameStore
	contacts   repository.ContactLog

	// Overrides, mostly for tests.
	universeTiers []resolver.UniverseTier
	statsTiers    []resolver.StatsTier
	deliveryTiers []notify.Tier
	sandbox       notify.Tier
	tiersSet      bool
	now           func() time.Time
	newID         func() string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithLookupTiers replaces the platform tiers built from config.
func WithLookupTiers(universe []resolver.UniverseTier, stats []resolver.StatsTier) Option {
	return func(s *Service) {
		s.universeTiers = universe
		s.statsTiers = stats
		s.tiersSet = true
	}
}

// WithDeliveryTiers replaces the mail tiers built from config. sandbox may be
// nil to disable test mode.
func WithDeliveryTiers(sandbox notify.Tier, tiers ...notify.Tier) Option {
	return func(s *Service) {
		s.deliveryTiers = tiers
		s.sandbox = sandbox
		if s.deliveryTiers == nil {
			s.deliveryTiers = []notify.Tier{}
		}
	}
}

// WithGameStore replaces the file backed games list.
func WithGameStore(g repository.GameStore) Option {
	return func(s *Service) {
		s.games = g
	}
}

// WithContactLog replaces the file backed contact log.
func WithContactLog(l repository.ContactLog) Option {
	return func(s *Service) {
		s.contacts = l
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the id source for new portfolio games.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs a Service. A nil cfg means defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipelines and stores.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting studio service...")

	if s.catalog == nil {
		c, err := catalog.Load()
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		s.catalog = c
	}

	if !s.tiersSet {
		client := platform.NewClient(
			platform.WithTimeout(time.Duration(s.cfg.HTTPTimeoutMS)*time.Millisecond),
			platform.WithUserAgent(s.cfg.UserAgent),
		)
		s.universeTiers = platform.UniverseTiers(client, s.cfg.UniverseEndpoints)
		s.statsTiers = platform.StatsTiers(client, s.cfg.StatsEndpoints)
	}
	s.resolver = resolver.New(s.catalog,
		resolver.WithUniverseTiers(s.universeTiers...),
		resolver.WithStatsTiers(s.statsTiers...),
		resolver.WithLogger(s.logger.Named("resolver")),
		resolver.WithClock(s.now),
		resolver.WithLiveBudget(time.Duration(s.cfg.LiveBudgetMS)*time.Millisecond),
	)

	if s.games == nil {
		s.games = repository.NewJSONGameStore(s.cfg.GamesPath())
	}
	if s.contacts == nil {
		s.contacts = repository.NewFileContactLog(s.cfg.ContactsPath())
	}

	if s.deliveryTiers == nil {
		s.deliveryTiers, s.sandbox = deliveryTiers(s.cfg)
	}
	s.dispatcher = notify.NewDispatcher(s.contacts,
		notify.WithTiers(s.deliveryTiers...),
		notify.WithSandbox(s.sandbox),
		notify.WithRecipients(s.cfg.Recipients...),
		notify.WithSender(notify.Address{Name: s.cfg.MailFromName, Email: s.cfg.MailFrom}),
		notify.WithTestModeIsSuccess(s.cfg.TestModeIsSuccess),
		notify.WithLogger(s.logger.Named("notify")),
		notify.WithClock(s.now),
	)

	s.started = true
	s.logger.Info(ctx, "studio service started",
		logger.Int("catalogGames", len(s.catalog.References())),
		logger.Any("deliveryMethods", s.dispatcher.Methods()),
		logger.Int("recipients", len(s.cfg.Recipients)),
	)
	if !s.cfg.SendGridConfigured() && !s.cfg.SMTPConfigured() {
		s.logger.Warn(ctx, "no production mail provider configured; contact mail will use test mode")
	}
	return nil
}

// deliveryTiers builds the mail chain from config. A provider without usable
// credentials is left out.
func deliveryTiers(cfg *config.Config) ([]notify.Tier, notify.Tier) {
	var tiers []notify.Tier
	if cfg.SendGridConfigured() {
		tiers = append(tiers, mail.NewSendGrid(cfg.SendGridAPIKey, cfg.SendGridHost))
	}
	if cfg.SMTPConfigured() {
		tiers = append(tiers, mail.NewSMTP(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.GmailUser,
			Password: cfg.GmailAppPassword,
		}))
	}
	return tiers, mail.NewTestSink(cfg.TestSinkAPI)
}

// Stop marks the service stopped. File stores hold no open handles.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "studio service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Games resolves the catalog in the given order.
func (s *Service) Games(ctx context.Context, rank resolver.Ranking) (resolver.Result, error) {
	if err := s.ready(); err != nil {
		return resolver.Result{}, err
	}
	return s.resolver.Resolve(ctx, s.catalog.References(), rank)
}

// TopGame returns the most visited catalog game.
func (s *Service) TopGame(ctx context.Context) (model.GameRecord, bool, error) {
	if err := s.ready(); err != nil {
		return model.GameRecord{}, false, err
	}
	return s.resolver.Top(ctx, resolver.RankByVisits)
}

// DefaultBackground is the hero image used when no game resolves.
func (s *Service) DefaultBackground() string {
	if s.catalog == nil {
		return ""
	}
	return s.catalog.Defaults().HeroBackground
}

// Summary aggregates the catalog for the stats banner.
func (s *Service) Summary(ctx context.Context) (resolver.Summary, error) {
	if err := s.ready(); err != nil {
		return resolver.Summary{}, err
	}
	return s.resolver.Summary(ctx)
}

// SubmitContact persists and delivers a contact submission.
func (s *Service) SubmitContact(ctx context.Context, in model.ContactInput) (notify.Receipt, error) {
	if err := s.ready(); err != nil {
		return notify.Receipt{}, err
	}
	return s.dispatcher.Submit(ctx, in)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"sendgridEnabled":   s.cfg.SendGridConfigured(),
		"smtpEnabled":       s.cfg.SMTPConfigured(),
		"adminEnabled":      s.cfg.AdminEnabled(),
		"recipients":        len(s.cfg.Recipients),
		"testModeIsSuccess": s.cfg.TestModeIsSuccess,
	}

	if s.started {
		stats["catalogGames"] = len(s.catalog.References())
		stats["portfolioGames"] = s.games.Count(context.Background())
		stats["deliveryMethods"] = s.dispatcher.Methods()
	}

	return stats
}

// ListGames returns the portfolio list in stored order.
func (s *Service) ListGames(ctx context.Context) ([]model.Game, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	games, err := s.games.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []model.Game{}
	}
	return games, nil
}

// GetGame returns one portfolio game or repository.ErrNotFound.
func (s *Service) GetGame(ctx context.Context, id string) (model.Game, error) {
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}
	return s.games.Find(ctx, id)
}

// CreateGame stores a new portfolio game with a fresh id.
func (s *Service) CreateGame(ctx context.Context, in model.GameInput) (model.Game, error) {
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}
	now := s.now().UTC()
	g := model.Game{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		Featured:    in.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.games.Insert(ctx, g); err != nil {
		return model.Game{}, err
	}
	metrics.RecordAdminMutation("create")
	s.logger.Info(ctx, "portfolio game created", logger.String("id", g.ID), logger.String("title", g.Title))
	return g, nil
}

// UpdateGame replaces the editable fields of a game. CreatedAt and ID are
// kept.
func (s *Service) UpdateGame(ctx context.Context, id string, in model.GameInput) (model.Game, error) {
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}
	now := s.now().UTC()
	g, err := s.games.Update(ctx, id, func(g *model.Game) {
		g.Title = in.Title
		g.Description = in.Description
		g.ImageURL = in.ImageURL
		g.Category = in.Category
		g.Featured = in.Featured
		g.UpdatedAt = now
	})
	if err != nil {
		return model.Game{}, err
	}
	metrics.RecordAdminMutation("update")
	s.logger.Info(ctx, "portfolio game updated", logger.String("id", id))
	return g, nil
}

// DeleteGame removes a game.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordAdminMutation("delete")
	s.logger.Info(ctx, "portfolio game deleted", logger.String("id", id))
	return nil
}
