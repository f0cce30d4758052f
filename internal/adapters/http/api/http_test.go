package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/http/api"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/adapters/repository"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/notify"
	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/resolver"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

// mockDeps implements api.Dependencies in memory.
type mockDeps struct {
	games    []model.GameRecord
	gamesErr error
	topOK    bool

	receipt   notify.Receipt
	submitErr error
	panicMsg  string
	submitted []model.ContactInput

	portfolio map[string]model.Game
	nextID    int
}

func newMockDeps() *mockDeps {
	thumb := "/beta.webp"
	return &mockDeps{
		games: []model.GameRecord{
			{ExternalID: 2, DisplayName: "Beta", ConcurrentUsers: 100, TotalVisits: 5000, ThumbnailReference: &thumb, GameURL: "https://www.roblox.com/games/222/Beta", IsActive: true},
			{ExternalID: 1, DisplayName: "Alpha", ConcurrentUsers: 50, TotalVisits: 1000},
		},
		topOK:     true,
		portfolio: map[string]model.Game{},
	}
}

func (m *mockDeps) Games(_ context.Context, _ resolver.Ranking) (resolver.Result, error) {
	if m.gamesErr != nil {
		return resolver.Result{}, m.gamesErr
	}
	return resolver.Result{Games: m.games, Count: len(m.games), Timestamp: fixedNow}, nil
}

func (m *mockDeps) TopGame(_ context.Context) (model.GameRecord, bool, error) {
	if m.gamesErr != nil {
		return model.GameRecord{}, false, m.gamesErr
	}
	if !m.topOK || len(m.games) == 0 {
		return model.GameRecord{}, false, nil
	}
	return m.games[0], true, nil
}

func (m *mockDeps) Summary(_ context.Context) (resolver.Summary, error) {
	return resolver.Summarize(m.games), nil
}

func (m *mockDeps) DefaultBackground() string { return "https://cdn.example.com/hero.png" }

func (m *mockDeps) SubmitContact(_ context.Context, in model.ContactInput) (notify.Receipt, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if err := notify.Validate(in); err != nil {
		return notify.Receipt{}, err
	}
	m.submitted = append(m.submitted, in)
	return m.receipt, m.submitErr
}

func (m *mockDeps) ListGames(_ context.Context) ([]model.Game, error) {
	out := make([]model.Game, 0, len(m.portfolio))
	for _, g := range m.portfolio {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockDeps) GetGame(_ context.Context, id string) (model.Game, error) {
	g, ok := m.portfolio[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g, nil
}

func (m *mockDeps) CreateGame(_ context.Context, in model.GameInput) (model.Game, error) {
	m.nextID++
	g := model.Game{
		ID: fmt.Sprintf("game-%d", m.nextID), Title: in.Title, Description: in.Description,
		ImageURL: in.ImageURL, Category: in.Category, Featured: in.Featured,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	m.portfolio[g.ID] = g
	return g, nil
}

func (m *mockDeps) UpdateGame(_ context.Context, id string, in model.GameInput) (model.Game, error) {
	g, ok := m.portfolio[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	g.Title, g.Description, g.ImageURL, g.Category, g.Featured = in.Title, in.Description, in.ImageURL, in.Category, in.Featured
	m.portfolio[id] = g
	return g, nil
}

func (m *mockDeps) DeleteGame(_ context.Context, id string) error {
	if _, ok := m.portfolio[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.portfolio, id)
	return nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

const adminPassword = "correct horse battery staple"

func newAuth() *api.AdminAuth {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return api.NewAdminAuth(string(hash), "test-secret", time.Hour)
}

func newMux(deps *mockDeps, auth *api.AdminAuth) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, auth, nil)
	server.Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		panic(fmt.Sprintf("bad json %q: %v", w.Body.String(), err))
	}
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDeps(), newAuth())

		Convey("Then the health endpoint answers ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")
		})

		Convey("Then the metrics endpoint serves the custom registry", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Then the service stats are exposed", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["started"], ShouldBeTrue)
		})

		Convey("Then unknown methods are not found", func() {
			So(do(mux, http.MethodDelete, "/api/games", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGamesHandler(t *testing.T) {
	Convey("Given a games handler", t, func() {
		deps := newMockDeps()
		mux := newMux(deps, newAuth())

		Convey("When the games resolve", func() {
			w := do(mux, http.MethodGet, "/api/games?rank=visits", "")
			body := decode(w)

			Convey("Then the list is wrapped with count and timestamp", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["success"], ShouldBeTrue)
				So(body["count"], ShouldEqual, 2)
				So(body["timestamp"], ShouldEqual, "2025-03-04T05:06:07Z")

				games := body["games"].([]any)
				first := games[0].(map[string]any)
				So(first["name"], ShouldEqual, "Beta")
				So(first["ccu"], ShouldEqual, 100)
				So(first["playing"], ShouldEqual, 100)
				So(first["thumbnailPath"], ShouldEqual, "/beta.webp")
				So(games[1].(map[string]any)["thumbnailPath"], ShouldBeNil)
			})
		})

		Convey("When the rank is unknown", func() {
			w := do(mux, http.MethodGet, "/api/games?rank=rating", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["success"], ShouldBeFalse)
		})

		Convey("When resolution fails", func() {
			deps.gamesErr = context.DeadlineExceeded
			w := do(mux, http.MethodGet, "/api/games", "")
			body := decode(w)

			Convey("Then the error shape keeps an empty list", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(body["success"], ShouldBeFalse)
				So(body["error"], ShouldEqual, "Failed to fetch game data")
				So(body["message"], ShouldEqual, context.DeadlineExceeded.Error())
				So(body["games"], ShouldBeEmpty)
				So(body["count"], ShouldEqual, 0)
			})
		})

		Convey("When the hero background is requested", func() {
			w := do(mux, http.MethodGet, "/api/hero-background", "")
			body := decode(w)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["success"], ShouldBeTrue)
			So(body["backgroundUrl"], ShouldEqual, "/beta.webp")
			So(body["gameName"], ShouldEqual, "Beta")
			So(body["visitCount"], ShouldEqual, 5000)
			So(body["gameUrl"], ShouldEqual, "https://www.roblox.com/games/222/Beta")
		})

		Convey("When the top game has no thumbnail", func() {
			deps.games[0].ThumbnailReference = nil
			body := decode(do(mux, http.MethodGet, "/api/hero-background", ""))
			So(body["success"], ShouldBeTrue)
			So(body["backgroundUrl"], ShouldEqual, "https://cdn.example.com/hero.png")
		})

		Convey("When no game resolves", func() {
			deps.topOK = false
			w := do(mux, http.MethodGet, "/api/hero-background", "")
			body := decode(w)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["success"], ShouldBeFalse)
			So(body["gameName"], ShouldEqual, "Default Background")
			So(body["backgroundUrl"], ShouldEqual, "https://cdn.example.com/hero.png")
			So(body["visitCount"], ShouldEqual, 0)
		})

		Convey("When the studio summary is requested", func() {
			body := decode(do(mux, http.MethodGet, "/api/stats", ""))
			So(body["success"], ShouldBeTrue)
			So(body["totalProjects"], ShouldEqual, 2)
			So(body["totalVisits"], ShouldEqual, 6000)
			So(body["visitsDisplay"], ShouldEqual, "6.0K")
		})
	})
}

func TestContactHandler(t *testing.T) {
	const valid = `{"name":"Ada","email":"ada@example.com","serviceType":"general","subject":"Hi","message":"Hello"}`

	Convey("Given a contact handler", t, func() {
		deps := newMockDeps()
		deps.receipt = notify.Receipt{
			Submission: model.ContactSubmission{ID: "contact_1_abcdefghi"},
			Persisted:  true,
			Recipients: []string{"owner@studio.test"},
			Result:     notify.Result{Success: true, Method: notify.MethodSendGrid},
		}
		mux := newMux(deps, newAuth())

		Convey("The GET probe answers", func() {
			w := do(mux, http.MethodGet, "/api/contact", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["message"], ShouldEqual, "Contact API endpoint is working")
		})

		Convey("When delivery succeeds", func() {
			w := do(mux, http.MethodPost, "/api/contact", valid)
			body := decode(w)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["message"], ShouldEqual, "Contact form submitted and email sent successfully via SendGrid!")
			So(body["submissionId"], ShouldEqual, "contact_1_abcdefghi")
			So(body["method"], ShouldEqual, "SendGrid")
			So(body["recipients"], ShouldResemble, []any{"owner@studio.test"})
			So(body, ShouldNotContainKey, "testMode")
		})

		Convey("When delivery fell back to test mode", func() {
			deps.receipt.Result = notify.Result{
				Success: true, TestMode: true, Method: notify.MethodTestMode,
				PreviewURL: "https://ethereal.email/message/x", Warning: notify.WarningTestMode,
			}
			body := decode(do(mux, http.MethodPost, "/api/contact", valid))

			So(body["message"], ShouldEqual, "Contact form submitted and email sent via Test Mode!")
			So(body["testMode"], ShouldBeTrue)
			So(body["previewUrl"], ShouldEqual, "https://ethereal.email/message/x")
			So(body["warning"], ShouldEqual, notify.WarningTestMode)
			So(body, ShouldNotContainKey, "recipients")
		})

		Convey("When every delivery method failed", func() {
			deps.receipt.Result = notify.Result{Error: "All email services failed. Last error: boom", Warning: notify.WarningFailed}
			w := do(mux, http.MethodPost, "/api/contact", valid)
			body := decode(w)

			Convey("Then the submission is still acknowledged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["message"], ShouldEqual, "Contact form submitted successfully, but email delivery failed")
				So(body["submissionId"], ShouldEqual, "contact_1_abcdefghi")
				So(body["error"], ShouldEqual, "All email services failed. Last error: boom")
				So(body["warning"], ShouldEqual, notify.WarningFailed)
			})
		})

		Convey("When a required field is blank", func() {
			w := do(mux, http.MethodPost, "/api/contact", `{"name":"Ada","email":"","serviceType":"general","subject":"Hi","message":"Hello"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "Missing required fields")
			So(deps.submitted, ShouldBeEmpty)
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/api/contact", "name=Ada")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(deps.submitted, ShouldBeEmpty)
		})

		Convey("When the service errors unexpectedly", func() {
			deps.submitErr = errors.New("disk on fire")
			w := do(mux, http.MethodPost, "/api/contact", valid)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode(w)["error"], ShouldEqual, "Failed to submit contact form")
		})

		Convey("When the service panics", func() {
			deps.panicMsg = "nil map write at /secret/path.go:42"
			w := do(mux, http.MethodPost, "/api/contact", valid)

			Convey("Then a generic 500 is returned without details", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["error"], ShouldEqual, "Internal server error")
				So(w.Body.String(), ShouldNotContainSubstring, "secret")
			})
		})
	})
}

func login(mux http.Handler) *http.Cookie {
	w := do(mux, http.MethodPost, "/api/admin/login", `{"password":"`+adminPassword+`"}`)
	for _, c := range w.Result().Cookies() {
		if c.Name == api.AdminCookie {
			return c
		}
	}
	return nil
}

func TestAdmin(t *testing.T) {
	const game = `{"title":"Grow Eggs","description":"Eggs","imageUrl":"/eggs.webp","category":"Simulator","featured":true}`

	Convey("Given the admin routes", t, func() {
		deps := newMockDeps()
		mux := newMux(deps, newAuth())

		Convey("Requests without a session are rejected", func() {
			So(do(mux, http.MethodGet, "/api/admin/games", "").Code, ShouldEqual, http.StatusUnauthorized)
			So(do(mux, http.MethodDelete, "/api/admin/games/x", "").Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A forged cookie is rejected", func() {
			c := &http.Cookie{Name: api.AdminCookie, Value: "admin-session-token-2024"}
			So(do(mux, http.MethodGet, "/api/admin/games", "", c).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A wrong password does not log in", func() {
			w := do(mux, http.MethodPost, "/api/admin/login", `{"password":"nope"}`)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(w.Result().Cookies(), ShouldBeEmpty)
		})

		Convey("An empty password is a bad request", func() {
			So(do(mux, http.MethodPost, "/api/admin/login", `{}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("The dashboard redirects anonymous visitors to login", func() {
			w := do(mux, http.MethodGet, "/admin", "")
			So(w.Code, ShouldEqual, http.StatusFound)
			So(w.Header().Get("Location"), ShouldEqual, "/admin/login")

			w = do(mux, http.MethodGet, "/admin/login", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/admin/login")
		})

		Convey("When logged in", func() {
			cookie := login(mux)
			So(cookie, ShouldNotBeNil)
			So(cookie.HttpOnly, ShouldBeTrue)

			Convey("The dashboard is served", func() {
				w := do(mux, http.MethodGet, "/admin", "", cookie)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Portfolio Games")
			})

			Convey("A game can be created, read, updated and deleted", func() {
				w := do(mux, http.MethodPost, "/api/admin/games", game, cookie)
				So(w.Code, ShouldEqual, http.StatusCreated)
				created := decode(w)
				So(created["id"], ShouldEqual, "game-1")
				So(created["featured"], ShouldBeTrue)

				w = do(mux, http.MethodGet, "/api/admin/games/game-1", "", cookie)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["title"], ShouldEqual, "Grow Eggs")

				w = do(mux, http.MethodPut, "/api/admin/games/game-1", strings.Replace(game, "Grow Eggs", "Grow Eggs 2", 1), cookie)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["title"], ShouldEqual, "Grow Eggs 2")

				w = do(mux, http.MethodGet, "/api/admin/games", "", cookie)
				var list []map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
				So(list, ShouldHaveLength, 1)

				w = do(mux, http.MethodDelete, "/api/admin/games/game-1", "", cookie)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["message"], ShouldEqual, "Game deleted successfully")
			})

			Convey("Missing fields are rejected", func() {
				w := do(mux, http.MethodPost, "/api/admin/games", `{"title":"X","description":"","imageUrl":"/x","category":"C"}`, cookie)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["error"], ShouldEqual, "Missing required fields")
				So(deps.portfolio, ShouldBeEmpty)
			})

			Convey("Unknown ids are not found", func() {
				for _, method := range []string{http.MethodGet, http.MethodDelete} {
					w := do(mux, method, "/api/admin/games/nope", "", cookie)
					So(w.Code, ShouldEqual, http.StatusNotFound)
					So(decode(w)["error"], ShouldEqual, "Game not found")
				}
				So(do(mux, http.MethodPut, "/api/admin/games/nope", game, cookie).Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Nested paths are bad requests", func() {
				So(do(mux, http.MethodGet, "/api/admin/games/a/b", "", cookie).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Logout expires the cookie", func() {
				w := do(mux, http.MethodPost, "/api/admin/logout", "", cookie)
				So(w.Code, ShouldEqual, http.StatusOK)
				cleared := w.Result().Cookies()
				So(cleared, ShouldHaveLength, 1)
				So(cleared[0].MaxAge, ShouldBeLessThan, 0)
			})
		})
	})
}

func TestAdminAuth(t *testing.T) {
	Convey("Given an admin auth", t, func() {
		auth := newAuth()

		Convey("A issued token verifies", func() {
			token, exp, err := auth.Login(adminPassword)
			So(err, ShouldBeNil)
			So(exp, ShouldHappenAfter, time.Now())
			So(auth.Verify(token), ShouldBeNil)
		})

		Convey("An expired token is rejected", func() {
			token, _, err := auth.Login(adminPassword)
			So(err, ShouldBeNil)
			later := auth.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
			So(errors.Is(later.Verify(token), api.ErrUnauthorized), ShouldBeTrue)
		})

		Convey("A token signed with another secret is rejected", func() {
			other := api.NewAdminAuth(string(mustHash("x")), "other-secret", time.Hour)
			token, _, err := other.Login("x")
			So(err, ShouldBeNil)
			So(errors.Is(auth.Verify(token), api.ErrUnauthorized), ShouldBeTrue)
		})

		Convey("Without a hash or secret nothing logs in", func() {
			disabled := api.NewAdminAuth("", "", 0)
			So(disabled.Enabled(), ShouldBeFalse)
			_, _, err := disabled.Login(adminPassword)
			So(errors.Is(err, api.ErrUnauthorized), ShouldBeTrue)
		})
	})
}

func mustHash(pw string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}

func TestErrors(t *testing.T) {
	Convey("Operation tagged errors keep their kind and cause", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrInternal, cause)
		So(errors.Is(err, api.ErrInternal), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: internal error: boom")

		So(api.Wrap("api.op", nil), ShouldBeNil)
		So(errors.Is(api.Wrap("api.op", cause), cause), ShouldBeTrue)
		So(api.NewKind("api.op", api.ErrMissing).Error(), ShouldEqual, "api.op: missing required fields")
	})
}
