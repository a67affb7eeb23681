// Package hubs holds the collection hub registry: static reference data
// describing hubs, the materials they accept and the credits-per-kilogram
// rate table. The registry is loaded once from TOML and is read-only.
package hubs

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

//go:embed hubs.toml
var defaultRegistry []byte

// fileHub mirrors one [[hubs]] table.
type fileHub struct {
	ID        string             `toml:"id"`
	Name      string             `toml:"name"`
	Address   string             `toml:"address"`
	City      string             `toml:"city"`
	Latitude  float64            `toml:"latitude"`
	Longitude float64            `toml:"longitude"`
	Accepted  []string           `toml:"accepted"`
	Rates     map[string]float64 `toml:"rates"`
}

type fileRegistry struct {
	DefaultRate *float64           `toml:"default_rate"`
	Rates       map[string]float64 `toml:"rates"`
	Hubs        []fileHub          `toml:"hubs"`
}

// Registry answers hub lookups and rate queries.
type Registry struct {
	defaultRate decimal.Decimal
	rates       map[models.WasteType]decimal.Decimal
	hubs        map[string]*models.Hub
	ordered     []*models.Hub
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultRegistry))
}

// LoadFile reads a registry from a TOML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hub registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a registry from TOML.
func Load(r io.Reader) (*Registry, error) {
	var raw fileRegistry
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode hub registry: %w", err)
	}

	reg := &Registry{
		defaultRate: decimal.NewFromInt(1),
		rates:       make(map[models.WasteType]decimal.Decimal, len(raw.Rates)),
		hubs:        make(map[string]*models.Hub, len(raw.Hubs)),
	}
	if raw.DefaultRate != nil {
		if *raw.DefaultRate < 0 {
			return nil, fmt.Errorf("default_rate must not be negative")
		}
		reg.defaultRate = decimal.NewFromFloat(*raw.DefaultRate)
	}

	var err error
	if reg.rates, err = convertRates(raw.Rates); err != nil {
		return nil, err
	}

	for _, fh := range raw.Hubs {
		if fh.ID == "" {
			return nil, fmt.Errorf("hub %q has no id", fh.Name)
		}
		if _, dup := reg.hubs[fh.ID]; dup {
			return nil, fmt.Errorf("duplicate hub id %q", fh.ID)
		}
		rates, err := convertRates(fh.Rates)
		if err != nil {
			return nil, fmt.Errorf("hub %q: %w", fh.ID, err)
		}
		hub := &models.Hub{
			ID:   fh.ID,
			Name: fh.Name,
			Location: models.Location{
				Address:   fh.Address,
				City:      fh.City,
				Latitude:  fh.Latitude,
				Longitude: fh.Longitude,
			},
			Rates: rates,
		}
		for _, a := range fh.Accepted {
			hub.Accepted = append(hub.Accepted, models.NormalizeWasteType(a))
		}
		reg.hubs[hub.ID] = hub
		reg.ordered = append(reg.ordered, hub)
	}

	sort.Slice(reg.ordered, func(i, j int) bool { return reg.ordered[i].ID < reg.ordered[j].ID })
	return reg, nil
}

func convertRates(in map[string]float64) (map[models.WasteType]decimal.Decimal, error) {
	out := make(map[models.WasteType]decimal.Decimal, len(in))
	for k, v := range in {
		if v < 0 {
			return nil, fmt.Errorf("rate for %q must not be negative", k)
		}
		out[models.NormalizeWasteType(k)] = decimal.NewFromFloat(v)
	}
	return out, nil
}

// Get returns the hub with the given id.
func (r *Registry) Get(id string) (*models.Hub, error) {
	h, ok := r.hubs[id]
	if !ok {
		return nil, fmt.Errorf("hub %q: %w", id, common.ErrNotFound)
	}
	return h, nil
}

// List returns all hubs ordered by id.
func (r *Registry) List() []*models.Hub {
	out := make([]*models.Hub, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Rate returns credits per kilogram for wasteType at hubID: the hub's own
// override first, then the global table, then the default rate. Unknown
// hubs and unmapped materials are not errors here.
func (r *Registry) Rate(hubID string, wasteType models.WasteType) decimal.Decimal {
	if h, ok := r.hubs[hubID]; ok {
		if rate, ok := h.Rates[wasteType]; ok {
			return rate
		}
	}
	if rate, ok := r.rates[wasteType]; ok {
		return rate
	}
	return r.defaultRate
}

// DefaultRate is the rate applied to materials missing from every table.
func (r *Registry) DefaultRate() decimal.Decimal {
	return r.defaultRate
}
