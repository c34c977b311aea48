package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/DedS3t/richup-server/platform/game"
	log "github.com/sirupsen/logrus"
)

// table is one hosted game. mu is the single-writer lock for the game.
type table struct {
	mu     sync.Mutex
	code   string
	game   *models.Game
	conns  map[string]seat
	timers map[models.PlayerID]*graceTimer
}

// seat is a connection bound to a player of this table. It is guarded by the
// table lock, never by Relay.mu.
type seat struct {
	conn     *connection
	playerId models.PlayerID
}

func newTable(code string, g *models.Game) *table {
	return &table{
		code:   code,
		game:   g,
		conns:  make(map[string]seat),
		timers: make(map[models.PlayerID]*graceTimer),
	}
}

// online reports whether any live connection is bound to pid. Caller holds t.mu.
func (t *table) online(pid models.PlayerID) bool {
	for _, st := range t.conns {
		if st.playerId == pid {
			return true
		}
	}
	return false
}

// broadcast sends the full snapshot to every bound connection. Caller holds t.mu.
func (t *table) broadcast() {
	data, err := Encode(KindGameUpdate, GameUpdatePayload{State: t.game})
	if err != nil {
		log.WithField("game", t.code).WithError(err).Error("encode snapshot")
		return
	}
	for id, st := range t.conns {
		if err := st.conn.transport.Send(data); err != nil {
			log.WithFields(log.Fields{"game": t.code, "conn": id}).WithError(err).Debug("broadcast skipped")
		}
	}
}

func (t *table) summary() models.GameSummary {
	s := models.GameSummary{
		Code:      t.code,
		State:     t.game.State,
		Players:   len(t.game.Players),
		UpdatedAt: time.Now().UTC(),
	}
	if p := t.game.Players[t.game.CurrentPlayerId()]; p != nil {
		s.CurrentPlayer = p.Name
	}
	return s
}

func (t *table) result() models.GameResult {
	res := models.GameResult{
		Id:      t.code,
		EndedAt: time.Now().UTC(),
		Log:     append([]string(nil), t.game.LastActionLog...),
	}
	// ids are assigned p1, p2, ... in join order
	for i := 1; i <= len(t.game.Players); i++ {
		if p := t.game.Players[models.PlayerID(fmt.Sprintf("p%d", i))]; p != nil {
			res.Players = append(res.Players, p.Name)
		}
	}
	if winner, ok := game.Winner(t.game); ok {
		res.Winner = winner.Name
		res.WinnerId = string(winner.Id)
	}
	return res
}

// afterTransition publishes the new lobby summary and archives the game the
// first time it reaches the ended phase. Caller holds t.mu.
func (r *Relay) afterTransition(t *table, wasEnded bool) {
	ended := t.game.State == models.PhaseEnded
	if ended && !wasEnded {
		t.stopTimers()
		r.logger.WithField("game", t.code).Info("game over")
		if r.archive != nil {
			result := t.result()
			r.enqueue(func(ctx context.Context) {
				if err := r.archive.Record(ctx, result); err != nil {
					r.logger.WithField("game", result.Id).WithError(err).Warn("archive game result")
				}
			})
		}
	}
	if r.directory == nil {
		return
	}
	if ended {
		code := t.code
		r.enqueue(func(ctx context.Context) {
			if err := r.directory.Remove(ctx, code); err != nil {
				r.logger.WithField("game", code).WithError(err).Warn("remove game from directory")
			}
		})
		return
	}
	summary := t.summary()
	r.enqueue(func(ctx context.Context) {
		if err := r.directory.Publish(ctx, summary); err != nil {
			r.logger.WithField("game", summary.Code).WithError(err).Warn("publish game summary")
		}
	})
}
