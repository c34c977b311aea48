package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
	"github.com/stretchr/testify/require"
)

type fixedDice struct{ d1, d2 int }

func (f fixedDice) Roll() (int, int) { return f.d1, f.d2 }

// fakeConn records every envelope the relay sends to one client.
type fakeConn struct {
	mu   sync.Mutex
	msgs []Envelope
}

func (f *fakeConn) Send(data []byte) error {
	env, err := Decode(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.msgs = append(f.msgs, env)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func (f *fakeConn) lastOf(kind Kind) (Envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].Kind == kind {
			return f.msgs[i], true
		}
	}
	return Envelope{}, false
}

func (f *fakeConn) last() Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return Envelope{}
	}
	return f.msgs[len(f.msgs)-1]
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	was := !m.stopped
	m.stopped = true
	return was
}

// manualScheduler never fires on its own; tests call fire.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) last() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

type fakeDirectory struct {
	mu        sync.Mutex
	published map[string]models.GameSummary
	removed   []string
}

func (d *fakeDirectory) Publish(_ context.Context, s models.GameSummary) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.published == nil {
		d.published = make(map[string]models.GameSummary)
	}
	d.published[s.Code] = s
	return nil
}

func (d *fakeDirectory) Remove(_ context.Context, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removed = append(d.removed, code)
	return nil
}

type fakeArchive struct {
	mu      sync.Mutex
	results []models.GameResult
}

func (a *fakeArchive) Record(_ context.Context, r models.GameResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
	return nil
}

// stateView is the slice of the broadcast snapshot the tests look at.
type stateView struct {
	State              models.Phase      `json:"state"`
	TurnOrder          []models.PlayerID `json:"turnOrder"`
	CurrentPlayerIndex int               `json:"currentPlayerIndex"`
	Players            map[models.PlayerID]struct {
		Name       string `json:"name"`
		Cash       int    `json:"cash"`
		IsBankrupt bool   `json:"isBankrupt"`
	} `json:"players"`
	LastActionLog []string `json:"lastActionLog"`
}

type joinedView struct {
	GameId   string          `json:"gameId"`
	PlayerId models.PlayerID `json:"playerId"`
	State    stateView       `json:"state"`
}

type client struct {
	t    *testing.T
	rel  *Relay
	id   string
	conn *fakeConn
}

func newTestRelay(t *testing.T, cfg Config, opts ...Option) (*Relay, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	rel := New(game.NewEngine(nil, fixedDice{1, 2}), cfg, append([]Option{WithScheduler(sched)}, opts...)...)
	t.Cleanup(rel.Close)
	return rel, sched
}

func connect(t *testing.T, rel *Relay) *client {
	t.Helper()
	conn := &fakeConn{}
	id := rel.Connect(conn)
	require.Equal(t, KindWelcome, conn.last().Kind)
	return &client{t: t, rel: rel, id: id, conn: conn}
}

func (c *client) send(kind Kind, payload interface{}) {
	c.t.Helper()
	data, err := Encode(kind, payload)
	require.NoError(c.t, err)
	c.rel.HandleMessage(context.Background(), c.id, data)
}

func (c *client) joined() joinedView {
	c.t.Helper()
	env, ok := c.conn.lastOf(KindGameJoined)
	require.True(c.t, ok, "no GAME_JOINED received")
	var v joinedView
	require.NoError(c.t, json.Unmarshal(env.Payload, &v))
	return v
}

func (c *client) state() stateView {
	c.t.Helper()
	env := c.conn.last()
	require.Equal(c.t, KindGameUpdate, env.Kind, "payload: %s", env.Payload)
	var view struct {
		State stateView `json:"state"`
	}
	require.NoError(c.t, json.Unmarshal(env.Payload, &view))
	return view.State
}

func (c *client) errorMessage() string {
	c.t.Helper()
	env := c.conn.last()
	require.Contains(c.t, []Kind{KindError, KindReconnectFailed}, env.Kind, "payload: %s", env.Payload)
	var p ErrorPayload
	require.NoError(c.t, json.Unmarshal(env.Payload, &p))
	return p.Message
}

// hostAndGuest creates a game as Alice and seats Bob in it.
func hostAndGuest(t *testing.T, rel *Relay) (string, *client, *client) {
	t.Helper()
	alice := connect(t, rel)
	alice.send(KindCreateGame, CreateGamePayload{PlayerName: "Alice"})
	code := alice.joined().GameId

	bob := connect(t, rel)
	bob.send(KindJoinGame, JoinGamePayload{GameId: code, PlayerName: "Bob"})
	require.Equal(t, models.PlayerID("p2"), bob.joined().PlayerId)
	return code, alice, bob
}
