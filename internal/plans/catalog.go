package plans

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Interval is the billing cadence of a price.
type Interval string

const (
	Monthly Interval = "monthly"
	Annual  Interval = "annual"
)

// Price maps one payment-provider price ID to the tier it purchases.
type Price struct {
	ID       string   `yaml:"id" json:"id"`
	Tier     Tier     `yaml:"tier" json:"tier"`
	Interval Interval `yaml:"interval" json:"interval"`
	Legacy   bool     `yaml:"legacy" json:"-"`
}

type catalogFile struct {
	Prices []Price `yaml:"prices"`
}

// Catalog is the price ID -> tier table used by checkout and billing sync.
type Catalog struct {
	mu     sync.RWMutex
	prices map[string]Price
}

func NewCatalog(prices ...Price) *Catalog {
	c := &Catalog{prices: make(map[string]Price, len(prices))}
	for _, p := range prices {
		c.Register(p)
	}
	return c
}

// DefaultCatalog holds the live monthly and annual prices plus legacy test-mode IDs.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Price{ID: "price_1RNekUHgxuRkr4erU5JAMHDW", Tier: Beginner, Interval: Monthly},
		Price{ID: "price_1RNekWHgxuRkr4erYHsBIi8J", Tier: Pro, Interval: Monthly},
		Price{ID: "price_1RNekaHgxuRkr4erxRTzT4wB", Tier: Ultimate, Interval: Monthly},
		Price{ID: "price_1RNgs0HgxuRkr4er2mlEkigH", Tier: Beginner, Interval: Annual},
		Price{ID: "price_1RNgs5HgxuRkr4erHAS3knLs", Tier: Ultimate, Interval: Annual},
		Price{ID: "price_1RNdxFHgxuRkr4ermKL0dGiZ", Tier: Beginner, Interval: Monthly, Legacy: true},
		Price{ID: "price_1RNdxQHgxuRkr4er81wRoSKX", Tier: Pro, Interval: Monthly, Legacy: true},
		Price{ID: "price_1RNdxaHgxuRkr4erBYHrE4gz", Tier: Ultimate, Interval: Monthly, Legacy: true},
	)
}

// LoadCatalogFromFile reads a YAML price list. An empty path yields DefaultCatalog.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse price catalog: %w", err)
	}

	c := NewCatalog()
	for _, p := range file.Prices {
		if p.ID == "" {
			return nil, fmt.Errorf("price catalog: entry without id")
		}
		if !p.Tier.Valid() || p.Tier == Free {
			return nil, fmt.Errorf("price catalog: %s has invalid tier %q", p.ID, p.Tier)
		}
		if p.Interval == "" {
			p.Interval = Monthly
		}
		c.Register(p)
	}
	return c, nil
}

func (c *Catalog) Register(p Price) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[p.ID] = p
}

// Lookup returns the price registered under id.
func (c *Catalog) Lookup(id string) (Price, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[id]
	return p, ok
}

// TierFor maps a price ID to its tier. Unrecognized IDs map to Free.
func (c *Catalog) TierFor(id string) Tier {
	if p, ok := c.Lookup(id); ok {
		return p.Tier
	}
	return Free
}

// Purchasable lists non-legacy prices ordered by tier then interval.
func (c *Catalog) Purchasable() []Price {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Price, 0, len(c.prices))
	for _, p := range c.prices {
		if !p.Legacy {
			out = append(out, p)
		}
	}
	rank := func(t Tier) int {
		for i, v := range Tiers {
			if v == t {
				return i
			}
		}
		return len(Tiers)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return rank(out[i].Tier) < rank(out[j].Tier)
		}
		return out[i].Interval > out[j].Interval
	})
	return out
}
