package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the site
	Requests int           // Game list requests per ranking
	Workers  int           // Concurrent requests
	Timeout  time.Duration // HTTP request timeout
	Contact  bool          // Also submit one contact form
	Verbose  bool          // Log every game in the final listing
}

// Game is the subset of a game record the checks read.
type Game struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Playing int64   `json:"playing"`
	CCU     int64   `json:"ccu"`
	Visits  int64   `json:"visits"`
	Rating  float64 `json:"rating"`
	Source  string  `json:"source"`
	GameURL string  `json:"gameUrl"`
}

// GamesResponse mirrors GET /api/games.
type GamesResponse struct {
	Success bool   `json:"success"`
	Games   []Game `json:"games"`
	Count   int    `json:"count"`
	Error   string `json:"error"`
}

// HeroResponse mirrors GET /api/hero-background.
type HeroResponse struct {
	Success       bool   `json:"success"`
	BackgroundURL string `json:"backgroundUrl"`
	GameName      string `json:"gameName"`
	VisitCount    int64  `json:"visitCount"`
}

// SummaryResponse mirrors GET /api/stats.
type SummaryResponse struct {
	Success      bool  `json:"success"`
	Projects     int   `json:"totalProjects"`
	TotalVisits  int64 `json:"totalVisits"`
	TotalPlaying int64 `json:"totalPlaying"`
}

// ContactResponse mirrors POST /api/contact.
type ContactResponse struct {
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
	Method       string `json:"method"`
	TestMode     bool   `json:"testMode"`
	Warning      string `json:"warning"`
	Error        string `json:"error"`
}

// Stats holds run statistics.
type Stats struct {
	RequestsSent   int
	RequestsFailed int
	Sources        map[string]int
	ContactMethod  string
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
