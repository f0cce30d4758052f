package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// StudioName appears in headers and footers of every mail.
const StudioName = "Swansa x PeacefulPlay Studio"

// TestModePrefix is prepended to the subject of sandboxed mail.
const TestModePrefix = "[TEST MODE] "

//go:embed templates/*.tmpl
var templateFS embed.FS

var htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))

var textFuncs = texttemplate.FuncMap{"join": strings.Join}

var textTemplates = texttemplate.Must(texttemplate.New("text").Funcs(textFuncs).ParseFS(templateFS, "templates/*.txt.tmpl"))

// Human readable labels for the form's select values. Unknown values render
// as given.
var (
	ServiceLabels = map[string]string{
		"game-development":      "Full-Cycle Development",
		"game-acquisition":      "Game Acquisition & Buyouts",
		"growth-services":       "Growth & Live Operations",
		"developer-recruitment": "Developer Recruitment",
		"investment":            "Investment Opportunities",
		"networking":            "Professional Networking",
		"general":               "General Inquiry",
	}
	BudgetLabels = map[string]string{
		"under-10k": "Under $10,000",
		"10k-50k":   "$10,000 - $50,000",
		"50k-100k":  "$50,000 - $100,000",
		"100k-500k": "$100,000 - $500,000",
		"500k-plus": "$500,000+",
		"discuss":   "Prefer to discuss",
	}
	TimelineLabels = map[string]string{
		"urgent":        "ASAP (Rush project)",
		"1-month":       "Within 1 month",
		"2-3-months":    "2-3 months",
		"3-6-months":    "3-6 months",
		"6-months-plus": "6+ months",
		"flexible":      "Flexible timeline",
	}
	ExperienceLabels = map[string]string{
		"beginner":        "New to Roblox development",
		"some-experience": "Some experience with Roblox",
		"experienced":     "Experienced Roblox developer",
		"studio-owner":    "Studio owner/Game publisher",
		"investor":        "Investor/Business partner",
	}
)

// Content is a rendered mail.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

type view struct {
	Studio      string
	ID          string
	Name        string
	Email       string
	Company     string
	Service     string
	Subject     string
	Message     string
	MessageHTML htmltemplate.HTML
	Budget      string
	Timeline    string
	Experience  string
	Submitted   string
}

func label(table map[string]string, v string) string {
	if v == "" {
		return ""
	}
	if l, ok := table[v]; ok {
		return l
	}
	return v
}

// Subject builds the mail subject for a submission.
func Subject(sub model.ContactSubmission) string {
	return "🎮 New Contact Form: " + sub.Subject + " - " + sub.Name
}

// Render produces the HTML and plain text bodies of a submission. Output
// depends only on sub and now.
func Render(sub model.ContactSubmission, now time.Time) (Content, error) {
	v := view{
		Studio:      StudioName,
		ID:          sub.ID,
		Name:        sub.Name,
		Email:       sub.Email,
		Company:     model.Value(sub.Company),
		Service:     label(ServiceLabels, sub.ServiceInterest),
		Subject:     sub.Subject,
		Message:     sub.Message,
		MessageHTML: messageHTML(sub.Message),
		Budget:      label(BudgetLabels, model.Value(sub.BudgetRange)),
		Timeline:    label(TimelineLabels, model.Value(sub.Timeline)),
		Experience:  label(ExperienceLabels, model.Value(sub.ExperienceLevel)),
		Submitted:   now.UTC().Format("January 2, 2006 at 03:04 PM UTC"),
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, "contact.html.tmpl", v); err != nil {
		return Content{}, err
	}
	if err := textTemplates.ExecuteTemplate(&text, "contact.txt.tmpl", v); err != nil {
		return Content{}, err
	}
	return Content{
		Subject: Subject(sub),
		HTML:    strings.TrimSpace(html.String()),
		Text:    strings.TrimSpace(text.String()),
	}, nil
}

// messageHTML escapes the message and turns newlines into line breaks.
func messageHTML(msg string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(msg)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>")) //nolint:gosec // input escaped above
}

// TestModeContent wraps c with a banner naming the real recipients and the
// setup instructions for real delivery.
func TestModeContent(c Content, recipients []string) Content {
	data := struct {
		Recipients []string
		Body       any
	}{Recipients: recipients}

	var html, text bytes.Buffer
	data.Body = htmltemplate.HTML(c.HTML) //nolint:gosec // rendered by Render
	if err := htmlTemplates.ExecuteTemplate(&html, "testmode.html.tmpl", data); err != nil {
		html.Reset()
		html.WriteString(c.HTML)
	}
	data.Body = c.Text
	if err := textTemplates.ExecuteTemplate(&text, "testmode.txt.tmpl", data); err != nil {
		text.Reset()
		text.WriteString(c.Text)
	}
	return Content{
		Subject: TestModePrefix + c.Subject,
		HTML:    strings.TrimSpace(html.String()),
		Text:    strings.TrimSpace(text.String()),
	}
}
