package game

import (
	"testing"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/stretchr/testify/require"
)

// scriptedDice replays rolls in order and then repeats the last one.
type scriptedDice struct {
	rolls [][2]int
	next  int
}

func (s *scriptedDice) Roll() (int, int) {
	i := s.next
	if i >= len(s.rolls) {
		i = len(s.rolls) - 1
	} else {
		s.next++
	}
	return s.rolls[i][0], s.rolls[i][1]
}

func dice(rolls ...[2]int) *scriptedDice {
	return &scriptedDice{rolls: rolls}
}

func newTestGame(t *testing.T, roller Roller, names ...string) (*Engine, *models.Game) {
	t.Helper()
	e := NewEngine(nil, roller)
	g, err := e.CreateGame(names, DefaultStartingCash)
	require.NoError(t, err)
	return e, g
}

func give(g *models.Game, pid models.PlayerID, tileIds ...string) {
	for _, id := range tileIds {
		g.TileById(id).SetOwner(pid)
		g.Players[pid].AddProperty(id)
	}
}
