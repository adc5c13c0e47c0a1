// Package awards describes accolade badges and ranks contestants for the
// public standings. Everything here is a pure function of its inputs.
package awards

import "github.com/okian/racerdash/internal/domain/model"

// Known accolade type names.
const (
	StarOfCreativity     = "starOfCreativity"
	StarOfParticipation  = "starOfParticipation"
	MedalOfCreativity    = "medalOfCreativity"
	MedalOfParticipation = "medalOfParticipation"
)

// Icon identifies the glyph a renderer draws for a badge.
type Icon string

const (
	IconStar  Icon = "star"
	IconMedal Icon = "medal"
	IconAward Icon = "award"
)

// Badge is the renderable description of count accolades of one type.
type Badge struct {
	Type  string `json:"type"`
	Icon  Icon   `json:"icon"`
	Color string `json:"color"`
	Title string `json:"title"`
	Count int    `json:"count"`
	// ShowCount is set when more than one was granted.
	ShowCount bool `json:"showCount"`
	// Visible is false for a zero count; renderers draw nothing.
	Visible bool `json:"visible"`
}

type style struct {
	icon  Icon
	color string
	title string
}

var styles = map[string]style{ //nolint:gochecknoglobals // read-only table
	StarOfCreativity:     {IconStar, "red-400", "Star of Creativity"},
	StarOfParticipation:  {IconStar, "yellow-400", "Star of Participation"},
	MedalOfCreativity:    {IconMedal, "red-400", "Medal of Creativity"},
	MedalOfParticipation: {IconMedal, "yellow-500", "Medal of Participation"},
}

// ShelfOrder is the fixed display order of the known badges.
var ShelfOrder = []string{StarOfCreativity, StarOfParticipation, MedalOfCreativity, MedalOfParticipation} //nolint:gochecknoglobals // UI order

// Describe maps an accolade type and a count to a badge. Unknown types
// get the generic award icon titled with the raw type name.
func Describe(typeName string, count int) Badge {
	s, ok := styles[typeName]
	if !ok {
		s = style{IconAward, "slate-400", typeName}
	}
	return Badge{
		Type:      typeName,
		Icon:      s.icon,
		Color:     s.color,
		Title:     s.title,
		Count:     count,
		ShowCount: count > 1,
		Visible:   count > 0,
	}
}

// Tally counts accolades by type name.
func Tally(accolades []model.AccoladeGrant) map[string]int {
	out := make(map[string]int)
	for _, a := range accolades {
		out[a.Name]++
	}
	return out
}

// Count returns how many accolades of typeName were granted.
func Count(accolades []model.AccoladeGrant, typeName string) int {
	n := 0
	for _, a := range accolades {
		if a.Name == typeName {
			n++
		}
	}
	return n
}

// Shelf returns the visible badges of the known types in shelf order.
// An empty result means "No awards yet."
func Shelf(accolades []model.AccoladeGrant) []Badge {
	tally := Tally(accolades)
	var out []Badge
	for _, name := range ShelfOrder {
		if b := Describe(name, tally[name]); b.Visible {
			out = append(out, b)
		}
	}
	return out
}

// EmptyShelf is shown when a contestant holds no known badge.
const EmptyShelf = "No awards yet."
