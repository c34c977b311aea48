package relay

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndJoin(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	code, alice, bob := hostAndGuest(t, rel)

	assert.Len(t, code, 6)
	assert.Equal(t, models.PlayerID("p1"), alice.joined().PlayerId)
	assert.True(t, rel.Exists(strings.ToLower(code)))

	s := alice.state()
	assert.Equal(t, []models.PlayerID{"p1", "p2"}, s.TurnOrder)
	assert.Equal(t, "Bob", s.Players["p2"].Name)
	assert.Contains(t, s.LastActionLog, "Bob joined the game")
	assert.Equal(t, s, bob.state())
}

func TestCreateGameCash(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})

	host := connect(t, rel)
	host.send(KindCreateGame, CreateGamePayload{StartingCash: 2000})
	v := host.joined()
	assert.Equal(t, 2000, v.State.Players["p1"].Cash)
	assert.Equal(t, "Host", v.State.Players["p1"].Name)

	guest := connect(t, rel)
	guest.send(KindJoinGame, JoinGamePayload{GameId: v.GameId})
	assert.Equal(t, 2000, guest.joined().State.Players["p2"].Cash)

	legacy := connect(t, rel)
	legacy.send(KindCreateGame, CreateGamePayload{InitialCash: 900})
	assert.Equal(t, 900, legacy.joined().State.Players["p1"].Cash)
}

func TestJoinRejections(t *testing.T) {
	rel, _ := newTestRelay(t, Config{MaxPlayers: 2})
	code, _, _ := hostAndGuest(t, rel)

	carol := connect(t, rel)
	carol.send(KindJoinGame, JoinGamePayload{GameId: "ZZZZZZ", PlayerName: "Carol"})
	assert.Equal(t, "game code not found", carol.errorMessage())

	carol.send(KindJoinGame, JoinGamePayload{GameId: code, PlayerName: "Carol"})
	assert.Equal(t, "Game is full (max 2 players)", carol.errorMessage())

	carol.send(KindRollDice, nil)
	assert.Equal(t, "you are not in a game", carol.errorMessage())
}

func TestMalformedMessages(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	c := connect(t, rel)

	for _, raw := range []string{"nope", `{"payload":{}}`, `{"kind":"JOIN_GAME","payload":"x"}`} {
		rel.HandleMessage(context.Background(), c.id, []byte(raw))
		assert.Equal(t, "malformed message", c.errorMessage(), raw)
	}

	c.send(KindCreateGame, CreateGamePayload{PlayerName: "Alice"})
	c.send("DANCE", nil)
	assert.Equal(t, "unknown message kind: DANCE", c.errorMessage())

	assert.NotPanics(t, func() {
		rel.HandleMessage(context.Background(), "missing", []byte(`{"kind":"ROLL_DICE"}`))
	})
}

func TestTurnFlow(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	_, alice, bob := hostAndGuest(t, rel)

	before := alice.conn.count()
	bob.send(KindRollDice, nil)
	assert.Equal(t, "not your turn", bob.errorMessage())
	assert.Equal(t, before, alice.conn.count())

	alice.send(KindEndTurn, nil)
	assert.Equal(t, "you must roll the dice first", alice.errorMessage())

	alice.send(KindRollDice, nil)
	assert.Equal(t, models.PhaseActing, bob.state().State)

	alice.send(KindEndTurn, nil)
	assert.Equal(t, "answer the buy prompt first", alice.errorMessage())
	alice.send(KindRollDice, nil)
	assert.Equal(t, "you have already rolled the dice", alice.errorMessage())
	bob.send(KindBuyProperty, BuyPropertyPayload{Confirm: true})
	assert.Equal(t, "not your turn", bob.errorMessage())

	alice.send(KindBuyProperty, BuyPropertyPayload{Confirm: true})
	s := bob.state()
	assert.Equal(t, models.PhaseTurnEnded, s.State)
	assert.Equal(t, 1340, s.Players["p1"].Cash)

	alice.send(KindEndTurn, nil)
	assert.Equal(t, 1, alice.state().CurrentPlayerIndex)

	bob.send(KindRollDice, nil)
	s = alice.state()
	assert.Equal(t, 1484, s.Players["p2"].Cash)
	assert.Equal(t, 1356, s.Players["p1"].Cash)
	assert.Equal(t, models.PhaseTurnEnded, s.State)

	bob.send(KindBuyProperty, BuyPropertyPayload{Confirm: true})
	assert.Equal(t, KindGameUpdate, bob.conn.last().Kind)
}

func TestRuleErrorsReachSender(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	_, alice, _ := hostAndGuest(t, rel)

	alice.send(KindUpgradeHouse, TilePayload{TileId: "t3"})
	assert.Equal(t, "You don't own this property", alice.errorMessage())

	alice.send(KindMortgageProperty, TilePayload{TileId: "t99"})
	assert.Equal(t, "Tile not found", alice.errorMessage())
}

func TestTradeOverRelay(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	code, alice, bob := hostAndGuest(t, rel)

	alice.send(KindTradeOffer, TradeOfferPayload{To: "p2", OfferCash: 100})
	require.Equal(t, KindGameUpdate, bob.conn.last().Kind)

	data, ok := rel.Snapshot(code)
	require.True(t, ok)
	var g models.Game
	require.NoError(t, json.Unmarshal(data, &g))
	require.Len(t, g.TradeOffers, 1)
	tradeId := g.TradeOffers[0].Id

	alice.send(KindTradeRespond, TradeRespondPayload{TradeId: tradeId, Accept: true})
	assert.Equal(t, "Not your trade to respond to", alice.errorMessage())

	bob.send(KindTradeRespond, TradeRespondPayload{TradeId: tradeId, Accept: true})
	s := alice.state()
	assert.Equal(t, 1400, s.Players["p1"].Cash)
	assert.Equal(t, 1600, s.Players["p2"].Cash)
}

func TestBankruptcyEndsGameAndArchives(t *testing.T) {
	dir := &fakeDirectory{}
	archive := &fakeArchive{}
	rel, _ := newTestRelay(t, Config{}, WithDirectory(dir), WithArchive(archive))
	code, alice, bob := hostAndGuest(t, rel)

	bob.send(KindDeclareBankruptcy, nil)
	s := alice.state()
	assert.Equal(t, models.PhaseEnded, s.State)
	assert.True(t, s.Players["p2"].IsBankrupt)
	assert.Contains(t, s.LastActionLog, "Alice WINS!")

	alice.send(KindRollDice, nil)
	assert.Equal(t, "game is over", alice.errorMessage())

	late := connect(t, rel)
	late.send(KindJoinGame, JoinGamePayload{GameId: code})
	assert.Equal(t, "game is over", late.errorMessage())

	rel.Close()
	require.Len(t, archive.results, 1)
	res := archive.results[0]
	assert.Equal(t, code, res.Id)
	assert.Equal(t, "Alice", res.Winner)
	assert.Equal(t, "p1", res.WinnerId)
	assert.Equal(t, []string{"Alice", "Bob"}, res.Players)
	assert.Contains(t, dir.removed, code)
	assert.Contains(t, dir.published, code)
	assert.Empty(t, rel.OpenGames())
}

func TestReconnectWithinGrace(t *testing.T) {
	rel, sched := newTestRelay(t, Config{GracePeriod: time.Minute})
	code, alice, bob := hostAndGuest(t, rel)

	rel.Disconnect(bob.id)
	timer := sched.last()
	require.NotNil(t, timer)
	assert.Equal(t, time.Minute, timer.d)
	assert.False(t, timer.stopped)

	bob2 := connect(t, rel)
	bob2.send(KindReconnect, ReconnectPayload{GameId: code, PlayerId: "p2"})
	assert.Equal(t, models.PlayerID("p2"), bob2.joined().PlayerId)
	assert.True(t, timer.stopped)
	assert.Contains(t, alice.state().LastActionLog, "Bob reconnected!")

	// a timer that already fired must not apply after the reconnect
	timer.f()
	s := alice.state()
	assert.False(t, s.Players["p2"].IsBankrupt)
	assert.Equal(t, models.PhaseWaiting, s.State)
}

func TestGraceExpiryBankrupts(t *testing.T) {
	rel, sched := newTestRelay(t, Config{})
	code, alice, bob := hostAndGuest(t, rel)

	rel.Disconnect(bob.id)
	sched.last().f()

	s := alice.state()
	assert.True(t, s.Players["p2"].IsBankrupt)
	assert.Equal(t, models.PhaseEnded, s.State)
	assert.Contains(t, s.LastActionLog, "Bob timed out (offline 2m0s) - bankrupt!")

	bob2 := connect(t, rel)
	bob2.send(KindReconnect, ReconnectPayload{GameId: code, PlayerId: "p2"})
	assert.Equal(t, KindReconnectFailed, bob2.conn.last().Kind)
	assert.Equal(t, "game not found or player bankrupt", bob2.errorMessage())

	bob2.send(KindReconnect, ReconnectPayload{GameId: "NOPE42", PlayerId: "p2"})
	assert.Equal(t, KindReconnectFailed, bob2.conn.last().Kind)
}

func TestSecondConnectionKeepsPlayerOnline(t *testing.T) {
	rel, sched := newTestRelay(t, Config{})
	code, _, bob := hostAndGuest(t, rel)

	tab := connect(t, rel)
	tab.send(KindReconnect, ReconnectPayload{GameId: code, PlayerId: "p2"})
	require.Equal(t, models.PlayerID("p2"), tab.joined().PlayerId)

	rel.Disconnect(bob.id)
	assert.Nil(t, sched.last())

	rel.Disconnect(tab.id)
	assert.NotNil(t, sched.last())
}

func TestCreatingAnotherGameLeavesTheFirst(t *testing.T) {
	rel, sched := newTestRelay(t, Config{})
	code, _, bob := hostAndGuest(t, rel)

	bob.send(KindCreateGame, CreateGamePayload{PlayerName: "Bob"})
	other := bob.joined().GameId
	assert.NotEqual(t, code, other)
	require.NotNil(t, sched.last())

	bob.send(KindRollDice, nil)
	assert.Equal(t, other, bob.joined().GameId)
	assert.Equal(t, models.PhaseActing, bob.state().State)
}

func TestLobbyAccessors(t *testing.T) {
	rel, _ := newTestRelay(t, Config{})
	code, _, bob := hostAndGuest(t, rel)

	other := connect(t, rel)
	other.send(KindCreateGame, CreateGamePayload{PlayerName: "Zed"})

	games := rel.OpenGames()
	require.Len(t, games, 2)
	assert.True(t, games[0].Code < games[1].Code)

	bob.send(KindDeclareBankruptcy, nil)
	games = rel.OpenGames()
	require.Len(t, games, 1)
	assert.NotEqual(t, code, games[0].Code)

	status, err := rel.CountryStatus(code, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, status["India"].Total)

	_, err = rel.CountryStatus(code, "p7")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
	_, err = rel.CountryStatus("NOPE42", "p1")
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, ok := rel.Snapshot("NOPE42")
	assert.False(t, ok)
	assert.False(t, rel.Exists("NOPE42"))
}

func TestConcurrentDisconnects(t *testing.T) {
	for i := 0; i < 200; i++ {
		rel, sched := newTestRelay(t, Config{})
		_, alice, bob := hostAndGuest(t, rel)

		var wg sync.WaitGroup
		for _, c := range []*client{alice, bob} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				rel.Disconnect(id)
			}(c.id)
		}
		wg.Wait()

		sched.mu.Lock()
		timers := len(sched.timers)
		sched.mu.Unlock()
		require.Equal(t, 2, timers, "both players must be offline")
		rel.Close()
	}
}
