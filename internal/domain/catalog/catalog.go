// Package catalog holds the immutable list of portfolio games together with
// their local thumbnails and the static statistics used as a last resort.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Sentinel kinds for catalog errors.
var (
	ErrInvalidCatalog = errors.New("invalid catalog")
)

var placeIDPattern = regexp.MustCompile(`/games/(\d+)/`)
var bareIDPattern = regexp.MustCompile(`^\d+$`)

// Entry is one row of the fallback table.
type Entry struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Visits      int64   `yaml:"visits"`
	Playing     int64   `yaml:"playing"`
	Rating      float64 `yaml:"rating"`
}

// Defaults fill fields no source provides.
type Defaults struct {
	Description    string        `yaml:"description"`
	Genre          string        `yaml:"genre"`
	MaxPlayers     int           `yaml:"maxPlayers"`
	Rating         float64       `yaml:"rating"`
	Created        time.Time     `yaml:"created"`
	Updated        time.Time     `yaml:"updated"`
	Creator        model.Creator `yaml:"creator"`
	HeroBackground string        `yaml:"heroBackground"`
}

type gameDoc struct {
	URL       string `yaml:"url"`
	Thumbnail string `yaml:"thumbnail"`
	Fallback  *Entry `yaml:"fallback"`
}

type document struct {
	Defaults Defaults  `yaml:"defaults"`
	Games    []gameDoc `yaml:"games"`
}

// Catalog is read-only after construction.
type Catalog struct {
	defaults   Defaults
	references []string
	thumbnails map[string]string
	fallbacks  map[string]Entry
}

// Load parses the catalog shipped with the binary.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse builds a Catalog from a YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		defaults:   doc.Defaults,
		references: make([]string, 0, len(doc.Games)),
		thumbnails: make(map[string]string, len(doc.Games)),
		fallbacks:  make(map[string]Entry, len(doc.Games)),
	}
	for i, g := range doc.Games {
		id, ok := ExtractPlaceID(g.URL)
		if !ok {
			return nil, fmt.Errorf("%w: game %d: no place id in %q", ErrInvalidCatalog, i, g.URL)
		}
		if _, dup := c.thumbnails[id]; dup {
			return nil, fmt.Errorf("%w: duplicate place id %s", ErrInvalidCatalog, id)
		}
		c.references = append(c.references, g.URL)
		c.thumbnails[id] = g.Thumbnail
		if g.Fallback != nil {
			if g.Fallback.Name == "" {
				return nil, fmt.Errorf("%w: fallback for %s has no name", ErrInvalidCatalog, id)
			}
			c.fallbacks[id] = *g.Fallback
		}
	}
	return c, nil
}

// ExtractPlaceID pulls the numeric place id out of a game URL of the form
// .../games/<id>/<slug>. A bare numeric id is returned as is.
func ExtractPlaceID(ref string) (string, bool) {
	if bareIDPattern.MatchString(ref) {
		return ref, true
	}
	m := placeIDPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// References returns the game URLs in catalog order.
func (c *Catalog) References() []string {
	out := make([]string, len(c.references))
	copy(out, c.references)
	return out
}

// Thumbnail returns the local asset path for a place id.
func (c *Catalog) Thumbnail(placeID string) (string, bool) {
	t, ok := c.thumbnails[placeID]
	if !ok || t == "" {
		return "", false
	}
	return t, true
}

// Fallback returns the static statistics for a place id.
func (c *Catalog) Fallback(placeID string) (Entry, bool) {
	e, ok := c.fallbacks[placeID]
	return e, ok
}

// Defaults returns the values used when a source omits a field.
func (c *Catalog) Defaults() Defaults {
	return c.defaults
}
