package relay

import (
	"encoding/json"
	"sort"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
)

func (r *Relay) allTables() []*table {
	r.mu.Lock()
	defer r.mu.Unlock()
	tables := make([]*table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	return tables
}

// OpenGames lists games that still accept players, sorted by code.
func (r *Relay) OpenGames() []models.GameSummary {
	var open []models.GameSummary
	for _, t := range r.allTables() {
		t.mu.Lock()
		if t.game.State != models.PhaseEnded && len(t.game.Players) < r.engine.MaxPlayers() {
			open = append(open, t.summary())
		}
		t.mu.Unlock()
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Code < open[j].Code })
	return open
}

func (r *Relay) Exists(code string) bool {
	return r.lookup(normalizeCode(code)) != nil
}

// Snapshot returns the JSON encoded game state.
func (r *Relay) Snapshot(code string) ([]byte, bool) {
	t := r.lookup(normalizeCode(code))
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	data, err := json.Marshal(t.game)
	if err != nil {
		r.logger.WithField("game", t.code).WithError(err).Error("encode snapshot")
		return nil, false
	}
	return data, true
}

func (r *Relay) CountryStatus(code string, pid models.PlayerID) (map[string]game.CountryStatus, error) {
	t := r.lookup(normalizeCode(code))
	if t == nil {
		return nil, ErrGameNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game.Players[pid] == nil {
		return nil, game.ErrPlayerNotFound
	}
	return game.PlayerCountryStatus(t.game, pid), nil
}
