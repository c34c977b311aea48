package game

import (
	"fmt"

	"github.com/DedS3t/richup-server/app/models"
	uuid "github.com/satori/go.uuid"
)

// TradeTerms is what a proposer puts on the table and asks for in return.
type TradeTerms struct {
	OfferProperties   []string
	OfferCash         int
	RequestProperties []string
	RequestCash       int
}

func (e *Engine) CreateTradeOffer(g *models.Game, from, to models.PlayerID, terms TradeTerms) (*models.TradeOffer, error) {
	if err := validateParties(g, from, to); err != nil {
		return nil, err
	}
	if terms.OfferCash < 0 || terms.RequestCash < 0 {
		return nil, reject(ErrInvalidTrade, "Cash amounts must not be negative")
	}
	if err := validateTerms(g, from, to, terms); err != nil {
		return nil, err
	}

	trade := &models.TradeOffer{
		Id:                uuid.NewV4().String(),
		From:              from,
		To:                to,
		OfferProperties:   nonNil(terms.OfferProperties),
		OfferCash:         terms.OfferCash,
		RequestProperties: nonNil(terms.RequestProperties),
		RequestCash:       terms.RequestCash,
		Status:            models.TradePending,
	}
	g.TradeOffers = append(g.TradeOffers, trade)
	g.Log(fmt.Sprintf("%s sent a trade offer to %s", g.Players[from].Name, g.Players[to].Name))
	return trade, nil
}

// RespondToTrade resolves a pending offer addressed to pid. Answering an offer
// that is no longer pending is a silent no-op. A failed acceptance moves
// nothing and leaves the offer pending.
func (e *Engine) RespondToTrade(g *models.Game, pid models.PlayerID, tradeId string, accept bool) error {
	trade := findTrade(g, tradeId)
	if trade == nil {
		return reject(ErrTradeNotFound, "Trade not found")
	}
	if trade.To != pid {
		return reject(ErrNotTradeRecipient, "Not your trade to respond to")
	}
	if trade.Status != models.TradePending {
		return nil
	}

	if !accept {
		trade.Status = models.TradeRejected
		g.Log(fmt.Sprintf("%s rejected the trade", g.Players[pid].Name))
		return nil
	}

	toPlayer := g.Players[trade.To]
	if toPlayer.Cash < trade.RequestCash {
		return reject(ErrInsufficientCash, "Not enough cash to accept")
	}
	if err := validateParties(g, trade.From, trade.To); err != nil {
		return err
	}
	terms := TradeTerms{
		OfferProperties:   trade.OfferProperties,
		OfferCash:         trade.OfferCash,
		RequestProperties: trade.RequestProperties,
		RequestCash:       trade.RequestCash,
	}
	if err := validateTerms(g, trade.From, trade.To, terms); err != nil {
		return reject(ErrInvalidTrade, "Trade is no longer valid: %s", err.Error())
	}

	fromPlayer := g.Players[trade.From]
	for _, tid := range trade.OfferProperties {
		transferTile(g, tid, fromPlayer, toPlayer)
	}
	for _, tid := range trade.RequestProperties {
		transferTile(g, tid, toPlayer, fromPlayer)
	}
	fromPlayer.Cash += trade.RequestCash - trade.OfferCash
	toPlayer.Cash += trade.OfferCash - trade.RequestCash

	trade.Status = models.TradeAccepted
	g.Log(fmt.Sprintf("Trade accepted! %s <-> %s", fromPlayer.Name, toPlayer.Name))
	return nil
}

func validateParties(g *models.Game, from, to models.PlayerID) error {
	fromPlayer, toPlayer := g.Players[from], g.Players[to]
	if fromPlayer == nil || toPlayer == nil {
		return reject(ErrPlayerNotFound, "Player not found")
	}
	if from == to {
		return reject(ErrInvalidTrade, "You cannot trade with yourself")
	}
	if fromPlayer.IsBankrupt || toPlayer.IsBankrupt {
		return reject(ErrInvalidTrade, "Bankrupt players cannot trade")
	}
	return nil
}

func validateTerms(g *models.Game, from, to models.PlayerID, terms TradeTerms) error {
	for _, tid := range terms.OfferProperties {
		if tile := g.TileById(tid); tile == nil || !tile.OwnedBy(from) {
			return reject(ErrNotOwner, "You don't own %s", tid)
		}
	}
	for _, tid := range terms.RequestProperties {
		if tile := g.TileById(tid); tile == nil || !tile.OwnedBy(to) {
			return reject(ErrNotOwner, "They don't own %s", tid)
		}
	}
	if terms.OfferCash > g.Players[from].Cash {
		return reject(ErrInsufficientCash, "Not enough cash")
	}
	return nil
}

// transferTile hands a tile over; houses never survive a trade, the mortgage does.
func transferTile(g *models.Game, tid string, from, to *models.Player) {
	tile := g.TileById(tid)
	if tile == nil {
		return
	}
	tile.SetOwner(to.Id)
	tile.HouseCount = 0
	from.RemoveProperty(tid)
	to.AddProperty(tid)
}

func findTrade(g *models.Game, id string) *models.TradeOffer {
	for _, t := range g.TradeOffers {
		if t.Id == id {
			return t
		}
	}
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return append([]string(nil), ids...)
}
