package relay

import (
	"fmt"
	"strings"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
	log "github.com/sirupsen/logrus"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Relay) createGame(c *connection, env Envelope) {
	var p CreateGamePayload
	if err := decodePayload(env, &p); err != nil {
		c.sendError(err)
		return
	}
	name := strings.TrimSpace(p.PlayerName)
	if name == "" {
		name = "Host"
	}
	cash := p.StartingCash
	if cash <= 0 {
		cash = p.InitialCash
	}
	if cash <= 0 {
		cash = r.cfg.StartingCash
	}

	g, err := r.engine.CreateGame([]string{name}, cash)
	if err != nil {
		c.sendError(err)
		return
	}
	r.release(c)

	r.mu.Lock()
	code := r.newCode()
	t := newTable(code, g)
	r.tables[code] = t
	r.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	pid := g.TurnOrder[0]
	r.attach(c, t, pid)
	r.logger.WithFields(log.Fields{"game": code, "player": pid, "conn": c.id}).Infof("game created by %s", name)
	c.send(KindGameJoined, GameJoinedPayload{GameId: code, PlayerId: pid, State: g})
	r.afterTransition(t, false)
}

func (r *Relay) joinGame(c *connection, env Envelope) {
	var p JoinGamePayload
	if err := decodePayload(env, &p); err != nil {
		c.sendError(err)
		return
	}
	code := normalizeCode(p.GameId)
	t := r.lookup(code)
	if t == nil {
		r.logger.WithFields(log.Fields{"game": code, "conn": c.id}).Warn("join for unknown game code")
		c.sendError(ErrGameNotFound)
		return
	}
	if err := r.checkSeat(t); err != nil {
		c.sendError(err)
		return
	}
	r.release(c)

	t.mu.Lock()
	defer t.mu.Unlock()
	player, err := r.engine.AddPlayer(t.game, strings.TrimSpace(p.PlayerName))
	if err != nil {
		c.sendError(err)
		return
	}
	r.attach(c, t, player.Id)
	r.logger.WithFields(log.Fields{"game": code, "player": player.Id, "conn": c.id}).Infof("%s joined", player.Name)
	c.send(KindGameJoined, GameJoinedPayload{GameId: code, PlayerId: player.Id, State: t.game})
	t.broadcast()
	r.afterTransition(t, false)
}

// checkSeat rejects a join before the joiner leaves their current game.
func (r *Relay) checkSeat(t *table) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game.State == models.PhaseEnded {
		return game.ErrGameOver
	}
	if len(t.game.Players) >= r.engine.MaxPlayers() {
		return &game.RuleError{Rule: game.ErrGameFull, Message: fmt.Sprintf("Game is full (max %d players)", r.engine.MaxPlayers())}
	}
	return nil
}

func (r *Relay) reconnect(c *connection, env Envelope) {
	var p ReconnectPayload
	if err := decodePayload(env, &p); err != nil {
		c.send(KindReconnectFailed, ErrorPayload{Message: err.Error()})
		return
	}
	code := normalizeCode(p.GameId)
	t := r.lookup(code)
	if t == nil || !r.reconnectable(t, p.PlayerId) {
		r.logger.WithFields(log.Fields{"game": code, "player": p.PlayerId, "conn": c.id}).Info("reconnect refused")
		c.send(KindReconnectFailed, ErrorPayload{Message: ErrReconnect.Error()})
		return
	}
	if cur, pid := r.binding(c); cur != t || pid != p.PlayerId {
		r.release(c)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// the timer may have fired while this connection was being released
	player := t.game.Players[p.PlayerId]
	if player == nil || player.IsBankrupt {
		c.send(KindReconnectFailed, ErrorPayload{Message: ErrReconnect.Error()})
		return
	}
	if t.cancelGrace(p.PlayerId) {
		r.logger.WithFields(log.Fields{"game": code, "player": p.PlayerId}).Info("cancelled disconnect timer")
	}
	r.attach(c, t, p.PlayerId)
	t.game.Log(fmt.Sprintf("%s reconnected!", player.Name))
	r.logger.WithFields(log.Fields{"game": code, "player": p.PlayerId, "conn": c.id}).Info("player reconnected")
	c.send(KindGameJoined, GameJoinedPayload{GameId: code, PlayerId: p.PlayerId, State: t.game})
	t.broadcast()
}

func (r *Relay) reconnectable(t *table, pid models.PlayerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	player := t.game.Players[pid]
	return player != nil && !player.IsBankrupt
}

// gameAction applies one in-game message to the sender's game and broadcasts
// the result. Rejections go to the sender only and change nothing.
func (r *Relay) gameAction(c *connection, env Envelope) {
	t, pid := r.binding(c)
	if t == nil {
		c.sendError(ErrNotInGame)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	wasEnded := t.game.State == models.PhaseEnded
	if err := r.apply(t, pid, env); err != nil {
		r.logger.WithFields(log.Fields{"game": t.code, "player": pid, "kind": env.Kind}).WithError(err).Debug("action rejected")
		c.sendError(err)
		return
	}
	t.broadcast()
	r.afterTransition(t, wasEnded)
}

// apply dispatches env to the engine. Caller holds t.mu.
func (r *Relay) apply(t *table, pid models.PlayerID, env Envelope) error {
	g := t.game
	if g.State == models.PhaseEnded {
		return game.ErrGameOver
	}
	player := g.Players[pid]
	if player == nil {
		return ErrNotInGame
	}
	if player.IsBankrupt {
		return ErrPlayerBankrupt
	}
	myTurn := g.CurrentPlayerId() == pid

	switch env.Kind {
	case KindRollDice:
		if !myTurn {
			return ErrNotYourTurn
		}
		if g.State != models.PhaseWaiting {
			return ErrAlreadyRolled
		}
		r.engine.RollDice(g)
		return nil

	case KindBuyProperty:
		var p BuyPropertyPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		if !myTurn {
			return ErrNotYourTurn
		}
		if g.State != models.PhaseActing {
			return nil
		}
		if p.Confirm {
			r.engine.BuyProperty(g, pid, g.Board[player.Position].Id)
		} else {
			r.engine.DeclineProperty(g, pid)
		}
		return nil

	case KindUpgradeHouse, KindMortgageProperty, KindUnmortgageProperty:
		var p TilePayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		switch env.Kind {
		case KindUpgradeHouse:
			return r.engine.UpgradeHouse(g, pid, p.TileId)
		case KindMortgageProperty:
			return r.engine.MortgageProperty(g, pid, p.TileId)
		default:
			return r.engine.UnmortgageProperty(g, pid, p.TileId)
		}

	case KindDeclareBankruptcy:
		t.cancelGrace(pid)
		r.engine.DeclareBankruptcy(g, pid)
		return nil

	case KindTradeOffer:
		var p TradeOfferPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		_, err := r.engine.CreateTradeOffer(g, pid, p.To, game.TradeTerms{
			OfferProperties:   p.OfferTiles,
			OfferCash:         p.OfferCash,
			RequestProperties: p.RequestTiles,
			RequestCash:       p.RequestCash,
		})
		return err

	case KindTradeRespond:
		var p TradeRespondPayload
		if err := decodePayload(env, &p); err != nil {
			return err
		}
		return r.engine.RespondToTrade(g, pid, p.TradeId, p.Accept)

	case KindEndTurn:
		if !myTurn {
			return ErrNotYourTurn
		}
		switch g.State {
		case models.PhaseWaiting:
			return ErrMustRoll
		case models.PhaseActing:
			return ErrPendingPrompt
		}
		r.engine.EndTurn(g)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownKind, env.Kind)
}
