package game

import (
	"fmt"

	"github.com/DedS3t/richup-server/app/models"
)

// DeclareBankruptcy removes pid from play and returns their tiles to the bank.
// It is a no-op for unknown or already bankrupt players.
func (e *Engine) DeclareBankruptcy(g *models.Game, pid models.PlayerID) {
	player := g.Players[pid]
	if player == nil || player.IsBankrupt {
		return
	}
	player.IsBankrupt = true
	player.Cash = 0

	for i := range g.Board {
		if g.Board[i].OwnedBy(pid) {
			g.Board[i].Release()
		}
	}
	player.Properties = []string{}

	if idx := indexOf(g.TurnOrder, pid); idx != -1 {
		if idx < g.CurrentPlayerIndex {
			g.CurrentPlayerIndex--
		} else if idx == g.CurrentPlayerIndex {
			// the next player slides into this index
			if g.CurrentPlayerIndex >= len(g.TurnOrder)-1 {
				g.CurrentPlayerIndex = 0
			}
			g.DoublesCount = 0
		}
		g.TurnOrder = append(g.TurnOrder[:idx:idx], g.TurnOrder[idx+1:]...)
	}

	g.Log(fmt.Sprintf("%s declared bankruptcy!", player.Name))

	active := ActivePlayers(g)
	if len(active) <= 1 {
		g.State = models.PhaseEnded
		g.CurrentTurnAction = nil
		if len(active) == 1 {
			g.Log(fmt.Sprintf("%s WINS!", g.Players[active[0]].Name))
		}
		return
	}
	g.State = models.PhaseWaiting
	g.CurrentTurnAction = nil
}

// checkAutoBankruptcy bankrupts a player in debt who has nothing left to mortgage.
// A player holding unmortgaged tiles is left to mortgage or declare manually.
func (e *Engine) checkAutoBankruptcy(g *models.Game, pid models.PlayerID) {
	player := g.Players[pid]
	if player == nil || player.Cash >= 0 {
		return
	}
	for i := range g.Board {
		if g.Board[i].OwnedBy(pid) && !g.Board[i].Mortgaged {
			return
		}
	}
	e.DeclareBankruptcy(g, pid)
}

// ActivePlayers lists the non-bankrupt ids still in the turn order.
func ActivePlayers(g *models.Game) []models.PlayerID {
	var active []models.PlayerID
	for _, id := range g.TurnOrder {
		if p := g.Players[id]; p != nil && !p.IsBankrupt {
			active = append(active, id)
		}
	}
	return active
}

// Winner returns the last player standing once the game has ended.
func Winner(g *models.Game) (*models.Player, bool) {
	if g.State != models.PhaseEnded {
		return nil, false
	}
	active := ActivePlayers(g)
	if len(active) != 1 {
		return nil, false
	}
	return g.Players[active[0]], true
}

func indexOf(ids []models.PlayerID, id models.PlayerID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
