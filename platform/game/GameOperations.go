package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/board"
)

const (
	DefaultStartingCash = 1500
	MaxPlayers          = 8
	GoBonus             = 200
	JailPosition        = 10
	// SpeedingLimit is the doubles streak that sends the roller to jail.
	SpeedingLimit = 3
)

// Roller produces one throw of two dice.
type Roller interface {
	Roll() (int, int)
}

type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) Roll() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(6) + 1, r.rng.Intn(6) + 1
}

// Engine applies game transitions. It holds no per-game state; callers must
// serialize calls that touch the same Game.
type Engine struct {
	catalog    *board.Catalog
	dice       Roller
	maxPlayers int
}

func NewEngine(catalog *board.Catalog, dice Roller) *Engine {
	if catalog == nil {
		catalog = board.Default()
	}
	if dice == nil {
		dice = NewRandomRoller(time.Now().UnixNano())
	}
	return &Engine{catalog: catalog, dice: dice, maxPlayers: MaxPlayers}
}

// SetMaxPlayers lowers or raises the per-game seat cap, bounded by the palette size.
func (e *Engine) SetMaxPlayers(n int) {
	if n < 1 || n > len(models.PlayerColors) {
		n = MaxPlayers
	}
	e.maxPlayers = n
}

func (e *Engine) MaxPlayers() int { return e.maxPlayers }

func (e *Engine) CreateGame(playerNames []string, startingCash int) (*models.Game, error) {
	if len(playerNames) == 0 {
		return nil, ErrNoPlayers
	}
	if len(playerNames) > e.maxPlayers {
		return nil, ErrGameFull
	}
	if startingCash <= 0 {
		startingCash = DefaultStartingCash
	}
	g := &models.Game{
		Players:       make(map[models.PlayerID]*models.Player, len(playerNames)),
		TurnOrder:     make([]models.PlayerID, 0, len(playerNames)),
		Board:         e.catalog.Clone(),
		State:         models.PhaseWaiting,
		LastActionLog: []string{"Game Created"},
		TradeOffers:   []*models.TradeOffer{},
		StartingCash:  startingCash,
	}
	for _, name := range playerNames {
		e.seat(g, name)
	}
	return g, nil
}

// AddPlayer seats a new player at the end of the turn order with the game's starting cash.
func (e *Engine) AddPlayer(g *models.Game, name string) (*models.Player, error) {
	if g.State == models.PhaseEnded {
		return nil, ErrGameOver
	}
	if len(g.Players) >= e.maxPlayers {
		return nil, reject(ErrGameFull, "Game is full (max %d players)", e.maxPlayers)
	}
	player := e.seat(g, name)
	g.Log(fmt.Sprintf("%s joined the game", player.Name))
	return player, nil
}

func (e *Engine) seat(g *models.Game, name string) *models.Player {
	index := len(g.Players)
	id := models.PlayerID(fmt.Sprintf("p%d", index+1))
	if name == "" {
		name = fmt.Sprintf("Player %d", index+1)
	}
	player := &models.Player{
		Id:         id,
		Name:       name,
		Color:      models.PlayerColors[index%len(models.PlayerColors)],
		Cash:       g.StartingCash,
		Properties: []string{},
	}
	g.Players[id] = player
	g.TurnOrder = append(g.TurnOrder, id)
	return player
}

func (e *Engine) RollDice(g *models.Game) {
	pid := g.CurrentPlayerId()
	player := g.Players[pid]
	if player == nil || g.State == models.PhaseEnded {
		return
	}

	die1, die2 := e.dice.Roll()
	g.Dice = [2]int{die1, die2}
	isDouble := die1 == die2
	if isDouble {
		g.DoublesCount++
	} else {
		g.DoublesCount = 0
	}

	if g.DoublesCount >= SpeedingLimit {
		player.Position = JailPosition
		player.JailTurns = 1
		g.Log(fmt.Sprintf("%s rolled %d doubles in a row -> GO TO JAIL!", player.Name, SpeedingLimit))
		e.EndTurn(g)
		return
	}

	e.MovePlayer(g, die1+die2)

	// A bankruptcy during landing already moved the turn on.
	if player.IsBankrupt || g.State == models.PhaseEnded || g.State == models.PhaseActing {
		return
	}
	advanceAfterAction(g)
}

// MovePlayer advances the active player and resolves the tile they land on.
func (e *Engine) MovePlayer(g *models.Game, steps int) {
	pid := g.CurrentPlayerId()
	player := g.Players[pid]
	if player == nil {
		return
	}
	raw := player.Position + steps
	laps := raw / board.Size
	newPos := raw % board.Size
	if laps > 0 {
		player.Cash += GoBonus * laps
		g.Log(fmt.Sprintf("%s passed GO! (+$%d)", player.Name, GoBonus*laps))
	}
	player.Position = newPos
	g.Log(fmt.Sprintf("%s moved to %s", player.Name, g.Board[newPos].Name))

	e.landOn(g, pid, newPos)
}

func (e *Engine) landOn(g *models.Game, pid models.PlayerID, pos int) {
	tile := &g.Board[pos]
	player := g.Players[pid]
	g.CurrentTurnAction = nil

	switch tile.Type {
	case models.TilePolice:
		player.Position = JailPosition
		player.JailTurns = 1
		g.Log(fmt.Sprintf("%s -> Go To Jail!", player.Name))

	case models.TileTax:
		player.Cash -= tile.Price
		g.Log(fmt.Sprintf("%s paid $%d tax", player.Name, tile.Price))
		g.CurrentTurnAction = models.NewPendingAction(models.RentPaid{Amount: tile.Price, To: "Tax"})
		e.checkAutoBankruptcy(g, pid)

	case models.TileStreet, models.TileStation, models.TileUtility:
		if !tile.IsOwned() {
			if player.Cash >= tile.Price {
				g.CurrentTurnAction = models.NewPendingAction(models.BuyPrompt{
					TileId:   tile.Id,
					TileName: tile.Name,
					Price:    tile.Price,
					Country:  tile.Country,
					Flag:     tile.Flag,
				})
				g.State = models.PhaseActing
			}
			return
		}
		if tile.OwnedBy(pid) {
			return
		}
		owner := g.Players[*tile.Owner]
		if owner == nil || owner.IsBankrupt {
			return
		}
		rent := RentDue(g, tile)
		if rent <= 0 {
			return
		}
		player.Cash -= rent
		owner.Cash += rent
		g.CurrentTurnAction = models.NewPendingAction(models.RentPaid{Amount: rent, To: owner.Name})
		g.Log(fmt.Sprintf("%s paid $%d rent to %s", player.Name, rent, owner.Name))
		e.checkAutoBankruptcy(g, pid)

	default:
		// start, jail, parking, chest and chance have no effect; cards are not implemented.
	}
}

func (e *Engine) EndTurn(g *models.Game) {
	n := len(g.TurnOrder)
	if n == 0 || g.State == models.PhaseEnded {
		return
	}
	next := (g.CurrentPlayerIndex + 1) % n
	for safety := 0; safety < n; safety++ {
		if p := g.Players[g.TurnOrder[next]]; p == nil || !p.IsBankrupt {
			break
		}
		next = (next + 1) % n
	}
	g.CurrentPlayerIndex = next
	g.Log(fmt.Sprintf("--- Next Turn: %s ---", g.Players[g.TurnOrder[next]].Name))
	g.CurrentTurnAction = nil
	g.State = models.PhaseWaiting
	g.DoublesCount = 0
}

// advanceAfterAction lets a doubles roller go again, otherwise the turn is over.
func advanceAfterAction(g *models.Game) {
	if g.Dice[0] == g.Dice[1] && g.Dice[0] != 0 {
		g.State = models.PhaseWaiting
		g.Log("Doubles! Roll again.")
		return
	}
	g.State = models.PhaseTurnEnded
}
