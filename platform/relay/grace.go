package relay

import (
	"fmt"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	log "github.com/sirupsen/logrus"
)

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// graceTimer identifies one scheduled expiry. An expiry only applies while it
// is still the table's registered timer for the player, and both registration
// and expiry happen under the table lock, so a cancelled timer never mutates.
type graceTimer struct {
	timer Timer
}

// startGrace schedules auto-bankruptcy for pid. Caller holds t.mu.
func (r *Relay) startGrace(t *table, pid models.PlayerID) {
	t.cancelGrace(pid)
	gt := &graceTimer{}
	gt.timer = r.scheduler.AfterFunc(r.cfg.GracePeriod, func() { r.expire(t, pid, gt) })
	t.timers[pid] = gt
}

// cancelGrace is idempotent. Caller holds t.mu.
func (t *table) cancelGrace(pid models.PlayerID) bool {
	gt, ok := t.timers[pid]
	if !ok {
		return false
	}
	delete(t.timers, pid)
	gt.timer.Stop()
	return true
}

func (t *table) stopTimers() {
	for pid := range t.timers {
		t.cancelGrace(pid)
	}
}

func (r *Relay) expire(t *table, pid models.PlayerID, gt *graceTimer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timers[pid] != gt {
		return
	}
	delete(t.timers, pid)

	player := t.game.Players[pid]
	if player == nil || player.IsBankrupt || t.online(pid) {
		return
	}
	r.logger.WithFields(log.Fields{"game": t.code, "player": pid}).Info("auto-bankrupting offline player")
	t.game.Log(fmt.Sprintf("%s timed out (offline %s) - bankrupt!", player.Name, r.cfg.GracePeriod))

	wasEnded := t.game.State == models.PhaseEnded
	r.engine.DeclareBankruptcy(t.game, pid)
	t.broadcast()
	r.afterTransition(t, wasEnded)
}
