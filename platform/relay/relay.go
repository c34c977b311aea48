package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/pkg"
	"github.com/DedS3t/richup-server/platform/game"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownKind    = errors.New("unknown message kind")
	ErrNotInGame      = errors.New("you are not in a game")
	ErrGameNotFound   = errors.New("game code not found")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrAlreadyRolled  = errors.New("you have already rolled the dice")
	ErrMustRoll       = errors.New("you must roll the dice first")
	ErrPendingPrompt  = errors.New("answer the buy prompt first")
	ErrPlayerBankrupt = errors.New("you are bankrupt")
	ErrReconnect      = errors.New("game not found or player bankrupt")
)

// Transport is one live client connection. Send must not block for long;
// failures are logged and otherwise ignored.
type Transport interface {
	Send(data []byte) error
}

// Directory mirrors lobby summaries to an external store.
type Directory interface {
	Publish(ctx context.Context, summary models.GameSummary) error
	Remove(ctx context.Context, code string) error
}

// Archive records finished games.
type Archive interface {
	Record(ctx context.Context, result models.GameResult) error
}

type Config struct {
	GracePeriod  time.Duration
	StartingCash int
	MaxPlayers   int
	CodeLength   int
}

func DefaultConfig() Config {
	return Config{
		GracePeriod:  2 * time.Minute,
		StartingCash: game.DefaultStartingCash,
		MaxPlayers:   game.MaxPlayers,
		CodeLength:   6,
	}
}

// Relay maps connections to (game, player) pairs and runs every game
// transition under that game's lock, followed by one broadcast.
//
// Lock order: a table lock may be held while taking r.mu; r.mu is never held
// while taking a table lock.
type Relay struct {
	engine    *game.Engine
	cfg       Config
	scheduler Scheduler
	directory Directory
	archive   Archive
	logger    *log.Entry

	mu     sync.Mutex
	tables map[string]*table
	conns  map[string]*connection

	jobs     chan func(context.Context)
	jobsDone chan struct{}
	closed   bool
}

type Option func(*Relay)

func WithScheduler(s Scheduler) Option { return func(r *Relay) { r.scheduler = s } }

func WithDirectory(d Directory) Option { return func(r *Relay) { r.directory = d } }

func WithArchive(a Archive) Option { return func(r *Relay) { r.archive = a } }

func New(engine *game.Engine, cfg Config, opts ...Option) *Relay {
	def := DefaultConfig()
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = def.GracePeriod
	}
	if cfg.StartingCash <= 0 {
		cfg.StartingCash = def.StartingCash
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = def.CodeLength
	}
	if engine == nil {
		engine = game.NewEngine(nil, nil)
	}
	engine.SetMaxPlayers(cfg.MaxPlayers)

	r := &Relay{
		engine:    engine,
		cfg:       cfg,
		scheduler: realScheduler{},
		logger:    log.WithField("component", "relay"),
		tables:    make(map[string]*table),
		conns:     make(map[string]*connection),
		jobs:      make(chan func(context.Context), 256),
		jobsDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.runJobs()
	return r
}

type connection struct {
	id        string
	transport Transport

	// guarded by Relay.mu; the table's seat is the authority inside a game
	table    *table
	playerId models.PlayerID
}

func (c *connection) send(kind Kind, payload interface{}) {
	data, err := Encode(kind, payload)
	if err != nil {
		log.WithField("conn", c.id).WithError(err).Error("encode message")
		return
	}
	if err := c.transport.Send(data); err != nil {
		log.WithField("conn", c.id).WithError(err).Debug("send skipped")
	}
}

func (c *connection) sendError(err error) {
	c.send(KindError, ErrorPayload{Message: err.Error()})
}

// Connect registers a transport and greets it with its connection id.
func (r *Relay) Connect(t Transport) string {
	c := &connection{id: uuid.NewV4().String(), transport: t}
	r.mu.Lock()
	r.conns[c.id] = c
	r.mu.Unlock()

	r.logger.WithField("conn", c.id).Info("new connection")
	c.send(KindWelcome, WelcomePayload{ConnectionId: c.id})
	return c.id
}

// Disconnect forgets the connection and, if it was the player's last one,
// starts the grace timer for that player.
func (r *Relay) Disconnect(connId string) {
	r.mu.Lock()
	c := r.conns[connId]
	delete(r.conns, connId)
	r.mu.Unlock()
	if c == nil {
		return
	}
	r.logger.WithField("conn", connId).Info("disconnected")
	r.release(c)
}

// HandleMessage decodes one inbound envelope and applies it.
func (r *Relay) HandleMessage(ctx context.Context, connId string, data []byte) {
	r.mu.Lock()
	c := r.conns[connId]
	r.mu.Unlock()
	if c == nil {
		r.logger.WithContext(ctx).WithField("conn", connId).Warn("message from unknown connection")
		return
	}

	env, err := Decode(data)
	if err != nil {
		r.logger.WithContext(ctx).WithField("conn", connId).WithError(err).Warn("invalid message")
		c.sendError(ErrMalformed)
		return
	}

	switch env.Kind {
	case KindCreateGame:
		r.createGame(c, env)
	case KindJoinGame:
		r.joinGame(c, env)
	case KindReconnect:
		r.reconnect(c, env)
	default:
		r.gameAction(c, env)
	}
}

func (r *Relay) binding(c *connection) (*table, models.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return c.table, c.playerId
}

func (r *Relay) lookup(code string) *table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tables[code]
}

// attach binds c to (t, pid). Caller holds t.mu.
func (r *Relay) attach(c *connection, t *table, pid models.PlayerID) {
	t.conns[c.id] = seat{conn: c, playerId: pid}
	r.mu.Lock()
	c.table = t
	c.playerId = pid
	r.mu.Unlock()
}

// release unbinds c from its game, starting the grace timer when the player
// has no other live connection. The seat is removed under the table lock
// before the connection's own binding is cleared.
func (r *Relay) release(c *connection) {
	r.mu.Lock()
	t := c.table
	r.mu.Unlock()
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	st, seated := t.conns[c.id]
	delete(t.conns, c.id)
	r.mu.Lock()
	if c.table == t {
		c.table, c.playerId = nil, ""
	}
	r.mu.Unlock()
	if !seated {
		return
	}

	pid := st.playerId
	if t.online(pid) {
		return
	}
	player := t.game.Players[pid]
	if player == nil || player.IsBankrupt || t.game.State == models.PhaseEnded {
		return
	}
	r.logger.WithFields(log.Fields{"game": t.code, "player": pid}).
		Infof("player offline, bankrupt in %s unless they reconnect", r.cfg.GracePeriod)
	r.startGrace(t, pid)
}

func (r *Relay) newCode() string {
	for {
		code := pkg.RandString(r.cfg.CodeLength)
		if _, taken := r.tables[code]; !taken {
			return code
		}
	}
}

// Close stops every grace timer and drains pending side effects.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	tables := make([]*table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.Unlock()

	for _, t := range tables {
		t.mu.Lock()
		t.stopTimers()
		t.mu.Unlock()
	}
	close(r.jobs)
	<-r.jobsDone
}

// enqueue schedules a side effect outside the game lock. Jobs run in order.
func (r *Relay) enqueue(job func(context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.jobs <- job:
	default:
		r.logger.Warn("side effect queue full, dropping job")
	}
}

func (r *Relay) runJobs() {
	defer close(r.jobsDone)
	for job := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		job(ctx)
		cancel()
	}
}
