package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/repository"
	service "github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/app"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/config"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/catalog"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/chain"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const testCatalog = `
defaults:
  description: "An exciting Roblox experience!"
  genre: Simulator
  maxPlayers: 50
  rating: 85
  created: 2024-01-01T00:00:00Z
  updated: 2024-07-29T00:00:00Z
  creator: {id: 12345, name: "Swansa x PeacefulPlay", type: Group}
  heroBackground: "https://cdn.example.com/hero.png"
games:
  - url: https://www.roblox.com/games/111/Alpha
    thumbnail: /alpha.webp
    fallback: {name: Alpha, description: First, visits: 1000, playing: 50, rating: 90}
  - url: https://www.roblox.com/games/222/Beta
    thumbnail: /beta.webp
    fallback: {name: Beta, description: Second, visits: 5000, playing: 100, rating: 80}
  - url: https://www.roblox.com/games/333/Gamma
    fallback: {name: Gamma, description: Third, visits: 3000, playing: 20, rating: 70}
`

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func testCatalogOrPanic() *catalog.Catalog {
	c, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		panic(err)
	}
	return c
}

func testConfig(dir string) *config.Config {
	cfg := config.New()
	cfg.DataDir = dir
	cfg.Recipients = []string{"owner@studio.test"}
	return cfg
}

func mailTier(name string, err error) notify.Tier {
	return chain.Func(name, func(_ context.Context, _ notify.Envelope) (notify.Delivery, error) {
		if err != nil {
			return notify.Delivery{}, err
		}
		return notify.Delivery{MessageID: name + "-1", PreviewURL: "https://ethereal.email/message/x"}, nil
	})
}

// newOfflineService starts a service with no live lookups and in-memory
// mail tiers.
func newOfflineService(dir string, sgErr error) *service.Service {
	svc := service.New(testConfig(dir),
		service.WithLogger(logger.Nop()),
		service.WithCatalog(testCatalogOrPanic()),
		service.WithLookupTiers(nil, nil),
		service.WithDeliveryTiers(mailTier(notify.MethodTestMode, nil), mailTier(notify.MethodSendGrid, sgErr)),
		service.WithClock(func() time.Time { return fixedNow }),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New(nil, service.WithLogger(logger.Nop()))

		Convey("Then stats report it stopped", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["testModeIsSuccess"], ShouldBeTrue)
			So(stats, ShouldNotContainKey, "catalogGames")
		})

		Convey("Then operations refuse to run", func() {
			_, err := svc.Games(context.Background(), resolver.RankByCCU)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.SubmitContact(context.Background(), model.ContactInput{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.DeleteGame(context.Background(), "x"), service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then Stop is a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})

	Convey("Given a started service", t, func() {
		svc := newOfflineService(t.TempDir(), nil)
		defer svc.Stop()

		Convey("Then stats describe the wiring", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["catalogGames"], ShouldEqual, 3)
			So(stats["portfolioGames"], ShouldEqual, 0)
			So(stats["deliveryMethods"], ShouldResemble, []string{notify.MethodSendGrid, notify.MethodTestMode})
		})

		Convey("Then starting twice is harmless", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("When stopped it refuses work again", func() {
			svc.Stop()
			_, err := svc.Summary(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Games(t *testing.T) {
	Convey("Given a started service without live sources", t, func() {
		svc := newOfflineService(t.TempDir(), nil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When games are ranked by players", func() {
			res, err := svc.Games(ctx, resolver.RankByCCU)

			Convey("Then every game comes from the fallback table in order", func() {
				So(err, ShouldBeNil)
				So(res.Count, ShouldEqual, 3)
				So(res.Games[0].DisplayName, ShouldEqual, "Beta")
				So(res.Games[1].DisplayName, ShouldEqual, "Alpha")
				So(res.Games[2].DisplayName, ShouldEqual, "Gamma")
				So(res.Games[0].SourceTag, ShouldEqual, model.SourceFallback)
				So(res.Timestamp, ShouldEqual, fixedNow)
			})
		})

		Convey("Then the top game is the most visited one", func() {
			top, ok, err := svc.TopGame(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(top.DisplayName, ShouldEqual, "Beta")
			So(*top.ThumbnailReference, ShouldEqual, "/beta.webp")
		})

		Convey("Then the default background comes from the catalog", func() {
			So(svc.DefaultBackground(), ShouldEqual, "https://cdn.example.com/hero.png")
		})

		Convey("Then the summary totals the catalog", func() {
			sum, err := svc.Summary(ctx)
			So(err, ShouldBeNil)
			So(sum.Projects, ShouldEqual, 3)
			So(sum.TotalVisits, ShouldEqual, 9000)
			So(sum.TotalPlaying, ShouldEqual, 170)
		})
	})
}

func TestService_SubmitContact(t *testing.T) {
	input := model.ContactInput{
		Name:        "Ada",
		Email:       "ada@example.com",
		ServiceType: "investment",
		Subject:     "Hello",
		Message:     "Hi there",
	}

	Convey("Given a service whose first mail tier works", t, func() {
		dir := t.TempDir()
		svc := newOfflineService(dir, nil)
		defer svc.Stop()

		receipt, err := svc.SubmitContact(context.Background(), input)

		Convey("Then the submission is logged and delivered", func() {
			So(err, ShouldBeNil)
			So(receipt.Persisted, ShouldBeTrue)
			So(receipt.Result.Success, ShouldBeTrue)
			So(receipt.Result.Method, ShouldEqual, notify.MethodSendGrid)
			So(receipt.Recipients, ShouldResemble, []string{"owner@studio.test"})

			logged, err := repository.ReadContactLog(filepath.Join(dir, "contact-submissions.json"))
			So(err, ShouldBeNil)
			So(logged, ShouldHaveLength, 1)
			So(logged[0].ID, ShouldEqual, receipt.Submission.ID)
			So(logged[0].CreatedAt, ShouldEqual, fixedNow)
		})
	})

	Convey("Given a service whose real mail tier fails", t, func() {
		svc := newOfflineService(t.TempDir(), errors.New("401 unauthorized"))
		defer svc.Stop()

		receipt, err := svc.SubmitContact(context.Background(), input)

		Convey("Then the sandbox takes over", func() {
			So(err, ShouldBeNil)
			So(receipt.Result.TestMode, ShouldBeTrue)
			So(receipt.Result.Method, ShouldEqual, notify.MethodTestMode)
			So(receipt.Result.PreviewURL, ShouldNotBeEmpty)
		})
	})

	Convey("Given an incomplete submission", t, func() {
		dir := t.TempDir()
		svc := newOfflineService(dir, nil)
		defer svc.Stop()

		in := input
		in.Subject = " "
		_, err := svc.SubmitContact(context.Background(), in)

		Convey("Then it is rejected before anything is written", func() {
			So(errors.Is(err, notify.ErrMissingFields), ShouldBeTrue)
			logged, err := repository.ReadContactLog(filepath.Join(dir, "contact-submissions.json"))
			So(err, ShouldBeNil)
			So(logged, ShouldBeEmpty)
		})
	})
}

func TestService_AdminGames(t *testing.T) {
	Convey("Given a started service with an empty portfolio", t, func() {
		ids := []string{"game-1", "game-2"}
		next := 0
		clock := fixedNow

		svc := service.New(testConfig(t.TempDir()),
			service.WithLogger(logger.Nop()),
			service.WithCatalog(testCatalogOrPanic()),
			service.WithLookupTiers(nil, nil),
			service.WithDeliveryTiers(nil),
			service.WithClock(func() time.Time { return clock }),
			service.WithIDGenerator(func() string {
				id := ids[next]
				next++
				return id
			}),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		in := model.GameInput{Title: "Grow Eggs", Description: "Eggs", ImageURL: "/eggs.webp", Category: "Simulator"}

		Convey("When a game is created", func() {
			g, err := svc.CreateGame(ctx, in)

			Convey("Then it gets an id and timestamps", func() {
				So(err, ShouldBeNil)
				So(g.ID, ShouldEqual, "game-1")
				So(g.CreatedAt, ShouldEqual, fixedNow)
				So(g.UpdatedAt, ShouldEqual, fixedNow)

				all, err := svc.ListGames(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
				So(svc.GetStats()["portfolioGames"], ShouldEqual, 1)
			})

			Convey("Then updating it keeps the creation time", func() {
				clock = fixedNow.Add(time.Hour)
				in.Title = "Grow Eggs 2"
				in.Featured = true
				up, err := svc.UpdateGame(ctx, g.ID, in)

				So(err, ShouldBeNil)
				So(up.Title, ShouldEqual, "Grow Eggs 2")
				So(up.Featured, ShouldBeTrue)
				So(up.CreatedAt, ShouldEqual, fixedNow)
				So(up.UpdatedAt, ShouldEqual, fixedNow.Add(time.Hour))

				got, err := svc.GetGame(ctx, g.ID)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, up)
			})

			Convey("Then deleting it empties the list", func() {
				So(svc.DeleteGame(ctx, g.ID), ShouldBeNil)
				all, err := svc.ListGames(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldBeEmpty)
			})
		})

		Convey("When the id does not exist", func() {
			_, err := svc.GetGame(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = svc.UpdateGame(ctx, "missing", in)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.DeleteGame(ctx, "missing"), repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then an empty portfolio lists as an empty slice", func() {
			all, err := svc.ListGames(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldNotBeNil)
			So(all, ShouldBeEmpty)
		})
	})
}

func TestService_AbsoluteDataFiles(t *testing.T) {
	Convey("Given store files configured with absolute paths outside the data dir", t, func() {
		elsewhere := t.TempDir()
		cfg := testConfig(t.TempDir())
		cfg.GamesFile = filepath.Join(elsewhere, "games.json")
		cfg.ContactsFile = filepath.Join(elsewhere, "contacts.json")

		svc := service.New(cfg,
			service.WithLogger(logger.Nop()),
			service.WithCatalog(testCatalogOrPanic()),
			service.WithLookupTiers(nil, nil),
			service.WithDeliveryTiers(nil, mailTier(notify.MethodSendGrid, nil)),
			service.WithClock(func() time.Time { return fixedNow }),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then writes land at those exact paths", func() {
			_, err := svc.CreateGame(context.Background(), model.GameInput{
				Title: "Grow Eggs", Description: "Eggs", ImageURL: "/eggs.webp", Category: "Simulator",
			})
			So(err, ShouldBeNil)
			_, err = svc.SubmitContact(context.Background(), model.ContactInput{
				Name: "Ada", Email: "ada@example.com", ServiceType: "general", Subject: "Hi", Message: "Hello",
			})
			So(err, ShouldBeNil)

			games, err := repository.NewJSONGameStore(cfg.GamesFile).ReadAll(context.Background())
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 1)
			logged, err := repository.ReadContactLog(cfg.ContactsFile)
			So(err, ShouldBeNil)
			So(logged, ShouldHaveLength, 1)
		})
	})
}
