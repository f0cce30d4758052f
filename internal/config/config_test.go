package config_test

import (
	"path/filepath"
	"testing"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
			convey.So(cfg.HTTPTimeoutMS, convey.ShouldEqual, 8000)
			convey.So(cfg.LiveBudgetMS, convey.ShouldEqual, 20000)
			convey.So(cfg.SMTPHost, convey.ShouldEqual, "smtp.gmail.com")
			convey.So(cfg.SMTPPort, convey.ShouldEqual, 587)
			convey.So(cfg.TestModeIsSuccess, convey.ShouldBeTrue)
			convey.So(cfg.Recipients, convey.ShouldHaveLength, 3)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then no delivery tier besides the test sink is configured", func() {
			convey.So(cfg.SendGridConfigured(), convey.ShouldBeFalse)
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
			convey.So(cfg.AdminEnabled(), convey.ShouldBeFalse)
		})
	})
}

func TestConfig_TierAvailability(t *testing.T) {
	convey.Convey("Given SendGrid keys", t, func() {
		cfg := config.New()

		convey.Convey("A placeholder key is not configured", func() {
			cfg.SendGridAPIKey = "your-sendgrid-api-key"
			convey.So(cfg.SendGridConfigured(), convey.ShouldBeFalse)
		})

		convey.Convey("A real key is configured", func() {
			cfg.SendGridAPIKey = "SG.abc"
			convey.So(cfg.SendGridConfigured(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given SMTP credentials", t, func() {
		cfg := config.New()
		cfg.GmailUser = "studio@gmail.com"

		convey.Convey("A missing password is not configured", func() {
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
		})

		convey.Convey("Placeholder passwords are not configured", func() {
			cfg.GmailAppPassword = "your-16-character-app-password"
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
			cfg.GmailAppPassword = "your-app-password-here"
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
		})

		convey.Convey("A short password is not configured", func() {
			cfg.GmailAppPassword = "short"
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
		})

		convey.Convey("A sixteen character password is configured", func() {
			cfg.GmailAppPassword = "abcdefghijklmnop"
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeTrue)
		})

		convey.Convey("A missing user is not configured", func() {
			cfg.GmailUser = ""
			cfg.GmailAppPassword = "abcdefghijklmnop"
			convey.So(cfg.SMTPConfigured(), convey.ShouldBeFalse)
		})
	})
}

func TestConfig_DataPaths(t *testing.T) {
	convey.Convey("Given a data directory", t, func() {
		cfg := config.New()
		cfg.DataDir = "/data"

		convey.Convey("Relative file names are joined to it", func() {
			cfg.GamesFile = "games.json"
			cfg.ContactsFile = "logs/contacts.json"
			convey.So(cfg.GamesPath(), convey.ShouldEqual, filepath.Join("/data", "games.json"))
			convey.So(cfg.ContactsPath(), convey.ShouldEqual, filepath.Join("/data", "logs", "contacts.json"))
		})

		convey.Convey("Absolute file names are used as given", func() {
			abs := filepath.Join(t.TempDir(), "games.json")
			cfg.GamesFile = abs
			cfg.ContactsFile = abs + ".log"
			convey.So(cfg.GamesPath(), convey.ShouldEqual, abs)
			convey.So(cfg.ContactsPath(), convey.ShouldEqual, abs+".log")
		})
	})
}
