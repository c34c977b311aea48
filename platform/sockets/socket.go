package socket

import (
	"context"

	"github.com/DedS3t/richup-server/platform/relay"
	socketio "github.com/googollee/go-socket.io"
	log "github.com/sirupsen/logrus"
)

// MessageEvent carries one JSON envelope in each direction.
const MessageEvent = "message"

// emitter is the part of socketio.Conn the transport writes through.
type emitter interface {
	Emit(event string, v ...interface{})
}

// socketSession is stored as the socket.io connection context.
type socketSession struct {
	id   string
	stop context.CancelFunc
}

// startSocketOutbox queues frames for conn and emits them from one goroutine,
// since Emit blocks until the previous packet is flushed.
func startSocketOutbox(conn emitter) (*outbox, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	box := newOutbox(outboxSize)
	go func() {
		_ = box.drain(ctx, func(_ context.Context, data []byte) error {
			conn.Emit(MessageEvent, string(data))
			return nil
		})
	}()
	return box, cancel
}

func session(s socketio.Conn) *socketSession {
	sess, _ := s.Context().(*socketSession)
	return sess
}

// CreateSocketIOServer binds socket.io connections to the relay. The caller
// runs Serve and mounts the server under /socket.io/.
func CreateSocketIOServer(rel *relay.Relay) (*socketio.Server, error) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		return nil, err
	}
	logger := log.WithField("transport", "socket.io")

	server.OnConnect("/", func(s socketio.Conn) error {
		box, stop := startSocketOutbox(s)
		id := rel.Connect(box)
		s.SetContext(&socketSession{id: id, stop: stop})
		logger.WithField("conn", id).Debug("connected")
		return nil
	})

	server.OnEvent("/", MessageEvent, func(s socketio.Conn, msg string) {
		sess := session(s)
		if sess == nil {
			return
		}
		rel.HandleMessage(context.Background(), sess.id, []byte(msg))
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		entry := logger.WithError(e)
		if s != nil {
			if sess := session(s); sess != nil {
				entry = entry.WithField("conn", sess.id)
			}
		}
		entry.Warn("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		sess := session(s)
		if sess == nil {
			return
		}
		logger.WithField("conn", sess.id).WithField("reason", reason).Debug("disconnected")
		sess.stop()
		rel.Disconnect(sess.id)
	})

	return server, nil
}
