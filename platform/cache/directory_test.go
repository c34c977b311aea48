package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DedS3t/richup-server/app/models"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn is a redis.Conn that logs commands and serves canned replies.
type recordingConn struct {
	cmds    [][]interface{}
	replies map[string]interface{}
}

func (c *recordingConn) Close() error { return nil }
func (c *recordingConn) Err() error   { return nil }
func (c *recordingConn) Flush() error { return nil }

func (c *recordingConn) Send(string, ...interface{}) error { return nil }

func (c *recordingConn) Receive() (interface{}, error) { return nil, errors.New("not supported") }

func (c *recordingConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	if cmd == "" {
		return nil, nil
	}
	c.cmds = append(c.cmds, append([]interface{}{cmd}, args...))
	if reply, ok := c.replies[cmd]; ok {
		return reply, nil
	}
	return int64(1), nil
}

func (c *recordingConn) names() []string {
	var names []string
	for _, cmd := range c.cmds {
		names = append(names, cmd[0].(string))
	}
	return names
}

func testDirectory(conn *recordingConn) *Directory {
	pool := &redis.Pool{Dial: func() (redis.Conn, error) { return conn, nil }}
	return NewDirectory(pool, 10*time.Minute)
}

func TestPublish(t *testing.T) {
	conn := &recordingConn{}
	d := testDirectory(conn)

	err := d.Publish(context.Background(), models.GameSummary{
		Code:          "ABC123",
		State:         models.PhaseWaiting,
		Players:       2,
		CurrentPlayer: "Alice",
		UpdatedAt:     time.Unix(1700000000, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"HSET", "EXPIRE", "SADD", "EXPIRE"}, conn.names())
	assert.Equal(t, []interface{}{"HSET", "game:ABC123",
		"code", "ABC123", "state", "waiting", "players", 2,
		"current_player", "Alice", "updated_at", int64(1700000000)}, conn.cmds[0])
	assert.Equal(t, []interface{}{"EXPIRE", "game:ABC123", 600}, conn.cmds[1])
	assert.Equal(t, []interface{}{"SADD", "games:open", "ABC123"}, conn.cmds[2])
	assert.Equal(t, []interface{}{"EXPIRE", "games:open", 600}, conn.cmds[3])
}

func TestRemove(t *testing.T) {
	conn := &recordingConn{}
	require.NoError(t, testDirectory(conn).Remove(context.Background(), "ABC123"))

	assert.Equal(t, []interface{}{"DEL", "game:ABC123"}, conn.cmds[0])
	assert.Equal(t, []interface{}{"SREM", "games:open", "ABC123"}, conn.cmds[1])
}

func TestClear(t *testing.T) {
	conn := &recordingConn{replies: map[string]interface{}{
		"SMEMBERS": []interface{}{[]byte("ABC123"), []byte("XYZ789")},
	}}
	n, err := testDirectory(conn).Clear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, [][]interface{}{
		{"SMEMBERS", "games:open"},
		{"DEL", "game:ABC123"},
		{"DEL", "game:XYZ789"},
		{"DEL", "games:open"},
	}, conn.cmds)
}

func TestClearEmpty(t *testing.T) {
	conn := &recordingConn{replies: map[string]interface{}{"SMEMBERS": []interface{}{}}}
	n, err := testDirectory(conn).Clear(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"SMEMBERS", "DEL"}, conn.names())
}

func TestClearError(t *testing.T) {
	conn := &recordingConn{replies: map[string]interface{}{"SMEMBERS": redis.Error("LOADING")}}
	_, err := testDirectory(conn).Clear(context.Background())
	assert.Error(t, err)
}
