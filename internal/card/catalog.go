// File: catalog.go
package card

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prizes.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a catalog lists no prizes.
var ErrEmptyCatalog = errors.New("card: catalog has no prizes")

// Prize is the content painted on the hidden layer.
type Prize struct {
	ID         string  `yaml:"id" json:"id"`
	Label      string  `yaml:"label" json:"label"`
	Caption    string  `yaml:"caption" json:"caption,omitempty"`
	Weight     float64 `yaml:"weight" json:"-"`
	Background string  `yaml:"background" json:"-"`
	Foreground string  `yaml:"foreground" json:"-"`
}

// Catalog is the set of prizes a session can draw from.
type Catalog struct {
	Prizes []Prize `yaml:"prizes"`
}

// Float64er is satisfied by *rand.Rand.
type Float64er interface {
	Float64() float64
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a YAML catalog from disk. An empty path yields the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prize catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prize catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ids, weights and colors.
func (c *Catalog) Validate() error {
	if len(c.Prizes) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c.Prizes))
	for i, p := range c.Prizes {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("card: prize %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("card: duplicate prize id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Weight <= 0 {
			return fmt.Errorf("card: prize %q weight must be positive", p.ID)
		}
		if _, err := ParseHexColor(p.Background); err != nil {
			return fmt.Errorf("card: prize %q background: %w", p.ID, err)
		}
		if _, err := ParseHexColor(p.Foreground); err != nil {
			return fmt.Errorf("card: prize %q foreground: %w", p.ID, err)
		}
	}
	return nil
}

// Pick draws one prize with probability proportional to its weight. It walks the list
// once, keeping the current prize with probability weight/runningTotal.
func (c *Catalog) Pick(rng Float64er) Prize {
	var (
		chosen Prize
		total  float64
	)
	for _, p := range c.Prizes {
		total += p.Weight
		if rng.Float64()*total < p.Weight {
			chosen = p
		}
	}
	return chosen
}

// Lookup finds a prize by id.
func (c *Catalog) Lookup(id string) (Prize, bool) {
	for _, p := range c.Prizes {
		if p.ID == id {
			return p, true
		}
	}
	return Prize{}, false
}

// ParseHexColor accepts #RGB, #RRGGBB and #RRGGBBAA.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
