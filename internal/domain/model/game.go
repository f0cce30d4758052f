// Package model contains domain models passed between layers.
package model

import "time"

// SourceTag names the tier that supplied a GameRecord's statistics.
type SourceTag string

// Statistics sources, in tier order, plus the static table.
const (
	SourceOfficial   SourceTag = "official"
	SourceRomMonitor SourceTag = "rommonitor"
	SourceRoProxy    SourceTag = "roproxy"
	SourceFallback   SourceTag = "fallback"
)

// CreatorType distinguishes user-owned from group-owned games.
type CreatorType string

// Creator kinds.
const (
	CreatorUser  CreatorType = "User"
	CreatorGroup CreatorType = "Group"
)

// Creator owns a game on the platform.
type Creator struct {
	ID   int64       `json:"id" yaml:"id"`
	Name string      `json:"name" yaml:"name"`
	Type CreatorType `json:"type" yaml:"type"`
}

// GameRecord is an enriched game with live or fallback statistics.
// Records are built once per resolution and never mutated afterwards.
type GameRecord struct {
	ExternalID         int64     `json:"id"`
	DisplayName        string    `json:"name"`
	Description        string    `json:"description"`
	RootReferenceID    int64     `json:"rootPlaceId"`
	ConcurrentUsers    int64     `json:"playing"`
	TotalVisits        int64     `json:"visits"`
	MaxCapacity        int       `json:"maxPlayers"`
	CreatedAt          time.Time `json:"created"`
	UpdatedAt          time.Time `json:"updated"`
	Creator            Creator   `json:"creator"`
	Genre              string    `json:"genre"`
	ThumbnailReference *string   `json:"thumbnailPath"`
	QualityScore       float64   `json:"rating"`
	SourceTag          SourceTag `json:"source"`

	// Presentation helpers for the portfolio pages.
	GameURL  string `json:"gameUrl"`
	PlaceID  string `json:"placeId"`
	IsActive bool   `json:"isActive"`
}

// CCU mirrors ConcurrentUsers under the name the site front end reads.
func (g GameRecord) CCU() int64 { return g.ConcurrentUsers }
