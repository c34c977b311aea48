package game

import (
	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/board"
)

type CountryStatus struct {
	Owned    int  `json:"owned"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
}

// OwnsFullCountry is the monopoly rule: every street of the country belongs to pid.
func OwnsFullCountry(g *models.Game, pid models.PlayerID, country string) bool {
	if country == "" {
		return false
	}
	total := 0
	for i := range g.Board {
		if g.Board[i].Country != country {
			continue
		}
		total++
		if !g.Board[i].OwnedBy(pid) {
			return false
		}
	}
	return total > 0
}

func PlayerCountryStatus(g *models.Game, pid models.PlayerID) map[string]CountryStatus {
	status := make(map[string]CountryStatus)
	for country, ids := range board.Countries(g.Board) {
		s := CountryStatus{Total: len(ids)}
		for _, id := range ids {
			if tile := g.TileById(id); tile != nil && tile.OwnedBy(pid) {
				s.Owned++
			}
		}
		s.Complete = s.Owned == s.Total
		status[country] = s
	}
	return status
}

func countOwned(tiles []models.Tile, pid models.PlayerID, kind models.TileKind) int {
	n := 0
	for i := range tiles {
		if tiles[i].Type == kind && tiles[i].OwnedBy(pid) {
			n++
		}
	}
	return n
}
