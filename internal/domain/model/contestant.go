// Package model contains the leaderboard records exchanged with the upstream API.
package model

import (
	"bytes"
	"encoding/json"
)

// Contestant is a leaderboard participant. TotalPoints is displayed as
// delivered and never recomputed from Points.
type Contestant struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Batch       string          `json:"description"`
	TotalPoints float64         `json:"totalOfStars"`
	Points      []PointGrant    `json:"startResponse,omitempty"`
	Accolades   []AccoladeGrant `json:"accolade,omitempty"`
}

// Key identifies the contestant in row keys, falling back to the name.
func (c Contestant) Key() string {
	if !c.ID.IsZero() {
		return c.ID.String()
	}
	return c.Name
}

// PointGrant awards points to a contestant.
type PointGrant struct {
	ID       ID      `json:"id"`
	Number   float64 `json:"number"`
	Reason   string  `json:"reason"`
	DateTime *string `json:"dateTime"`
}

// AccoladeGrant awards a badge. Name is the accolade type identifier.
type AccoladeGrant struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Reason   string  `json:"reason"`
	DateTime *string `json:"dateTime"`
}

// UnmarshalJSON accepts either a grant object or a bare type name.
func (a *AccoladeGrant) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*a = AccoladeGrant{Name: name}
		return nil
	}
	type plain AccoladeGrant
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = AccoladeGrant(p)
	return nil
}

// AccoladeType is a catalog entry describing one kind of accolade.
type AccoladeType struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog indexes accolade types by name.
type Catalog map[string]AccoladeType

// NewCatalog builds a Catalog; later entries win on duplicate names.
func NewCatalog(types []AccoladeType) Catalog {
	c := make(Catalog, len(types))
	for _, t := range types {
		c[t.Name] = t
	}
	return c
}

// Lookup returns the type for name.
func (c Catalog) Lookup(name string) (AccoladeType, bool) {
	t, ok := c[name]
	return t, ok
}

// Find returns the type with the given id.
func (c Catalog) Find(id ID) (AccoladeType, bool) {
	for _, t := range c {
		if t.ID == id {
			return t, true
		}
	}
	return AccoladeType{}, false
}
