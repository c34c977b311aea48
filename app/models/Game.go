package models

import "time"

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseActing    Phase = "acting"
	PhaseTurnEnded Phase = "turn_ended"
	PhaseEnded     Phase = "ended"
	// PhaseAuction is reserved; auctions are not implemented.
	PhaseAuction Phase = "auction"
)

// Game is the full state of one table. It is serialized as-is to every client.
type Game struct {
	Players            map[PlayerID]*Player `json:"players"`
	TurnOrder          []PlayerID           `json:"turnOrder"`
	CurrentPlayerIndex int                  `json:"currentPlayerIndex"`
	Dice               [2]int               `json:"dice"`
	DoublesCount       int                  `json:"doublesCount"`
	Board              []Tile               `json:"board"`
	State              Phase                `json:"state"`
	LastActionLog      []string             `json:"lastActionLog"`
	TradeOffers        []*TradeOffer        `json:"tradeOffers"`
	CurrentTurnAction  *PendingAction       `json:"currentTurnAction,omitempty"`
	StartingCash       int                  `json:"startingCash"`
}

// CurrentPlayerId returns the active player, or "" when the turn order is empty.
func (g *Game) CurrentPlayerId() PlayerID {
	if len(g.TurnOrder) == 0 || g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.TurnOrder) {
		return ""
	}
	return g.TurnOrder[g.CurrentPlayerIndex]
}

func (g *Game) Log(line string) {
	g.LastActionLog = append(g.LastActionLog, line)
}

func (g *Game) TileById(id string) *Tile {
	for i := range g.Board {
		if g.Board[i].Id == id {
			return &g.Board[i]
		}
	}
	return nil
}

func (g *Game) ActiveTrades() []*TradeOffer {
	var active []*TradeOffer
	for _, t := range g.TradeOffers {
		if t.Status == TradePending {
			active = append(active, t)
		}
	}
	return active
}

// GameSummary is the lobby view of a game.
type GameSummary struct {
	Code          string    `json:"code"`
	State         Phase     `json:"state"`
	Players       int       `json:"players"`
	CurrentPlayer string    `json:"currentPlayer"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// GameResult is the archived outcome of a finished game.
type GameResult struct {
	tableName struct{} `pg:"game_results"`

	Id       string    `pg:",pk" json:"id"`
	Winner   string    `json:"winner"`
	WinnerId string    `json:"winnerId"`
	Players  []string  `pg:",array" json:"players"`
	Log      []string  `pg:",array" json:"log"`
	EndedAt  time.Time `json:"endedAt"`
}

type VerifyGameDto struct {
	Code string `query:"code"`
}
