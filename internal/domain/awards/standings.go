package awards

import (
	"cmp"
	"slices"

	"github.com/okian/racerdash/internal/domain/model"
)

// Standing is one row of the public leaderboard.
type Standing struct {
	Rank                 int      `json:"rank"`
	ID                   model.ID `json:"id"`
	Name                 string   `json:"name"`
	Batch                string   `json:"description"`
	Points               float64  `json:"points"`
	StarOfCreativity     int      `json:"starOfCreativity"`
	StarOfParticipation  int      `json:"starOfParticipation"`
	MedalOfCreativity    int      `json:"medalOfCreativity"`
	MedalOfParticipation int      `json:"medalOfParticipation"`
	// RankColor highlights the podium; see RankColor.
	RankColor string `json:"rankColor"`
	// Shelf is Badges() captured when the standing was built.
	Shelf []Badge `json:"badges"`
}

// Badges returns the standing's badges in shelf order, zero counts included.
func (s Standing) Badges() []Badge {
	return []Badge{
		Describe(StarOfCreativity, s.StarOfCreativity),
		Describe(StarOfParticipation, s.StarOfParticipation),
		Describe(MedalOfCreativity, s.MedalOfCreativity),
		Describe(MedalOfParticipation, s.MedalOfParticipation),
	}
}

// Standings ranks contestants by total points, highest first. Ties keep
// upstream order. Ranks start at 1.
func Standings(contestants []model.Contestant) []Standing {
	sorted := slices.Clone(contestants)
	slices.SortStableFunc(sorted, func(a, b model.Contestant) int {
		return cmp.Compare(b.TotalPoints, a.TotalPoints)
	})
	out := make([]Standing, len(sorted))
	for i, c := range sorted {
		out[i] = Standing{
			Rank:                 i + 1,
			ID:                   c.ID,
			Name:                 c.Name,
			Batch:                c.Batch,
			Points:               c.TotalPoints,
			StarOfCreativity:     Count(c.Accolades, StarOfCreativity),
			StarOfParticipation:  Count(c.Accolades, StarOfParticipation),
			MedalOfCreativity:    Count(c.Accolades, MedalOfCreativity),
			MedalOfParticipation: Count(c.Accolades, MedalOfParticipation),
			RankColor:            RankColor(i + 1),
		}
		out[i].Shelf = out[i].Badges()
	}
	return out
}

// RankColor is the highlight of the top three ranks.
func RankColor(rank int) string {
	switch rank {
	case 1:
		return "yellow-400"
	case 2:
		return "blue-300"
	case 3:
		return "amber-500"
	default:
		return "slate-200"
	}
}
