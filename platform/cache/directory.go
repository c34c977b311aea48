package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/gomodule/redigo/redis"
)

const openGamesKey = "games:open"

// summaryHash is the Redis hash layout of a models.GameSummary.
type summaryHash struct {
	Code          string `redis:"code"`
	State         string `redis:"state"`
	Players       int    `redis:"players"`
	CurrentPlayer string `redis:"current_player"`
	UpdatedAt     int64  `redis:"updated_at"`
}

// Directory mirrors live game summaries into Redis so other services can list
// lobbies. It is written to, never read back into a game. The open set shares
// the hash TTL and is refreshed on every publish.
type Directory struct {
	pool *redis.Pool
	ttl  time.Duration
}

func NewDirectory(pool *redis.Pool, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Directory{pool: pool, ttl: ttl}
}

func gameKey(code string) string {
	return fmt.Sprintf("game:%s", code)
}

func (d *Directory) Publish(ctx context.Context, s models.GameSummary) error {
	conn, err := d.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	key := gameKey(s.Code)
	hash := summaryHash{
		Code:          s.Code,
		State:         string(s.State),
		Players:       s.Players,
		CurrentPlayer: s.CurrentPlayer,
		UpdatedAt:     s.UpdatedAt.Unix(),
	}
	if err := HSETStruct(key, &hash, conn); err != nil {
		return err
	}
	if err := EXPIRE(key, int(d.ttl.Seconds()), conn); err != nil {
		return err
	}
	if err := SADD(openGamesKey, s.Code, conn); err != nil {
		return err
	}
	return EXPIRE(openGamesKey, int(d.ttl.Seconds()), conn)
}

func (d *Directory) Remove(ctx context.Context, code string) error {
	conn, err := d.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := Del(gameKey(code), conn); err != nil {
		return err
	}
	return SREM(openGamesKey, code, conn)
}

// Clear drops every published summary. A fresh process owns no games, so
// anything left in the set belongs to a run that never removed it.
func (d *Directory) Clear(ctx context.Context) (int, error) {
	conn, err := d.pool.GetContext(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	codes, err := SMEMBERS(openGamesKey, conn)
	if err != nil {
		return 0, err
	}
	for _, code := range codes {
		if err := Del(gameKey(code), conn); err != nil {
			return 0, err
		}
	}
	return len(codes), Del(openGamesKey, conn)
}
