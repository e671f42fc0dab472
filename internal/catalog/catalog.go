// Package catalog provides read-only indexed lookup over the static seed
// dataset, the middle tier of the retrieval cascade.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tripcraft/tripcraft/internal/model"
)

// defaultFuzzyThreshold is the minimum Jaccard similarity for a fuzzy key
// match unless WithFuzzyThreshold overrides it.
const defaultFuzzyThreshold = 0.5

// Destination is one seeded city with all its category data.
type Destination struct {
	Info        model.DestinationInfo `yaml:"info"`
	Attractions []model.Attraction    `yaml:"attractions"`
	Hotels      []model.Hotel         `yaml:"hotels"`
	Restaurants []model.Restaurant    `yaml:"restaurants"`
	LocalTips   []string              `yaml:"local_tips"`
}

// FlightRoute holds seeded flight options for one origin/destination pair.
type FlightRoute struct {
	Origin      string         `yaml:"origin"`
	Destination string         `yaml:"destination"`
	Flights     []model.Flight `yaml:"flights"`
}

// seedFile is the on-disk shape of a catalog YAML document.
type seedFile struct {
	Destinations []Destination `yaml:"destinations"`
	Routes       []FlightRoute `yaml:"routes"`
}

// Stats summarizes catalog contents.
type Stats struct {
	Cities      int `json:"cities"`
	Attractions int `json:"attractions"`
	Hotels      int `json:"hotels"`
	Restaurants int `json:"restaurants"`
	Routes      int `json:"routes"`
}

// Catalog is an immutable, indexed view of the seed dataset.
type Catalog struct {
	byKey  map[string]*Destination
	keys   []string // normalized keys, for fuzzy scan
	names  map[string]string
	routes map[string][]model.Flight // "origin|destination" normalized
	fuzzy  float64
}

// Option adjusts catalog construction.
type Option func(*Catalog)

// WithFuzzyThreshold sets the minimum Jaccard similarity Lookup accepts for
// a fuzzy city-name match. Non-positive values keep the default.
func WithFuzzyThreshold(v float64) Option {
	return func(c *Catalog) {
		if v > 0 {
			c.fuzzy = v
		}
	}
}

// New builds a catalog from in-memory data. Later entries with duplicate
// keys are ignored.
func New(destinations []Destination, routes []FlightRoute, opts ...Option) *Catalog {
	c := &Catalog{
		byKey:  make(map[string]*Destination, len(destinations)),
		names:  make(map[string]string, len(destinations)),
		routes: make(map[string][]model.Flight, len(routes)),
		fuzzy:  defaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	for i := range destinations {
		d := &destinations[i]
		key := normalizeKey(d.Info.Name)
		if key == "" {
			continue
		}
		if _, exists := c.byKey[key]; exists {
			zap.L().Warn("catalog: duplicate destination key, keeping first", zap.String("key", key))
			continue
		}
		c.byKey[key] = d
		c.keys = append(c.keys, key)
		c.names[key] = d.Info.Name
	}
	sort.Strings(c.keys)
	for _, r := range routes {
		c.routes[routeKey(r.Origin, r.Destination)] = append(c.routes[routeKey(r.Origin, r.Destination)], r.Flights...)
	}
	return c
}

// Load reads every *.yaml / *.yml file under dir into one catalog.
func Load(dir string, opts ...Option) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read dir %s", dir)
	}

	var destinations []Destination
	var routes []FlightRoute
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: read %s", e.Name())
		}
		var sf seedFile
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return nil, eris.Wrapf(err, "catalog: parse %s", e.Name())
		}
		destinations = append(destinations, sf.Destinations...)
		routes = append(routes, sf.Routes...)
	}

	c := New(destinations, routes, opts...)
	zap.L().Info("catalog loaded",
		zap.String("dir", dir),
		zap.Int("cities", len(c.keys)),
		zap.Int("routes", len(c.routes)),
	)
	return c, nil
}

// Lookup finds a destination by city name. Exact normalized match first,
// then the best fuzzy match at or above the similarity threshold.
func (c *Catalog) Lookup(city string) (*Destination, bool) {
	key := normalizeKey(city)
	if d, ok := c.byKey[key]; ok {
		return d, true
	}

	bestScore := 0.0
	var best *Destination
	for _, k := range c.keys {
		if score := keySimilarity(key, k); score > bestScore {
			bestScore = score
			best = c.byKey[k]
		}
	}
	if bestScore >= c.fuzzy {
		return best, true
	}
	return nil, false
}

// Hotels returns a destination's hotels, optionally filtered to those at or
// under maxPerNight (0 disables the filter).
func (c *Catalog) Hotels(city string, maxPerNight float64) []model.Hotel {
	d, ok := c.Lookup(city)
	if !ok {
		return nil
	}
	if maxPerNight <= 0 {
		return d.Hotels
	}
	var out []model.Hotel
	for _, h := range d.Hotels {
		if h.PricePerNight <= maxPerNight {
			out = append(out, h)
		}
	}
	return out
}

// Restaurants returns a destination's restaurants, optionally filtered by
// cuisine (case-insensitive substring).
func (c *Catalog) Restaurants(city, cuisine string) []model.Restaurant {
	d, ok := c.Lookup(city)
	if !ok {
		return nil
	}
	if cuisine == "" {
		return d.Restaurants
	}
	want := normalizeKey(cuisine)
	var out []model.Restaurant
	for _, r := range d.Restaurants {
		if strings.Contains(normalizeKey(r.Cuisine), want) {
			out = append(out, r)
		}
	}
	return out
}

// Flights returns seeded flights between two cities.
func (c *Catalog) Flights(origin, destination string) []model.Flight {
	return c.routes[routeKey(origin, destination)]
}

// Cities lists the display names of every seeded destination.
func (c *Catalog) Cities() []string {
	out := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.names[k])
	}
	return out
}

// Stats counts catalog contents.
func (c *Catalog) Stats() Stats {
	s := Stats{Cities: len(c.keys), Routes: len(c.routes)}
	for _, d := range c.byKey {
		s.Attractions += len(d.Attractions)
		s.Hotels += len(d.Hotels)
		s.Restaurants += len(d.Restaurants)
	}
	return s
}

func routeKey(origin, destination string) string {
	return normalizeKey(origin) + "|" + normalizeKey(destination)
}
