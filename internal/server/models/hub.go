package models

import "github.com/shopspring/decimal"

// Location is where a hub accepts deposits.
type Location struct {
	Address   string
	City      string
	Latitude  float64
	Longitude float64
}

// Hub is a collection point. Rates holds per-hub overrides of the global
// credits-per-kilogram table.
type Hub struct {
	ID       string
	Name     string
	Location Location
	Accepted []WasteType
	Rates    map[WasteType]decimal.Decimal
}

// Accepts reports whether the hub lists w among its accepted materials.
func (h *Hub) Accepts(w WasteType) bool {
	for _, a := range h.Accepted {
		if a == w {
			return true
		}
	}
	return false
}
