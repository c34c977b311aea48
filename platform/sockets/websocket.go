package socket

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/DedS3t/richup-server/platform/relay"
	"github.com/coder/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeTimeout = 5 * time.Second
	readLimit    = 64 << 10
)

type WebsocketHandler struct {
	relay  *relay.Relay
	accept *websocket.AcceptOptions
	logger *log.Entry
}

// NewWebsocketHandler serves the plain websocket transport. origins are full
// origins such as http://localhost:3000; "*" accepts any origin.
func NewWebsocketHandler(rel *relay.Relay, origins []string) *WebsocketHandler {
	return &WebsocketHandler{
		relay:  rel,
		accept: acceptOptions(origins),
		logger: log.WithField("transport", "websocket"),
	}
}

func acceptOptions(origins []string) *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range origins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			opts.OriginPatterns = append(opts.OriginPatterns, origin)
			continue
		}
		opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
	}
	return opts
}

func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.logger.WithError(err).Debug("accept")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	box := newOutbox(outboxSize)
	go func() {
		defer cancel()
		_ = box.drain(ctx, func(ctx context.Context, data []byte) error {
			wctx, done := context.WithTimeout(ctx, writeTimeout)
			defer done()
			return conn.Write(wctx, websocket.MessageText, data)
		})
	}()

	id := h.relay.Connect(box)
	defer h.relay.Disconnect(id)
	logger := h.logger.WithField("conn", id)
	logger.Debug("connected")

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				logger.Debug("closed")
			default:
				logger.WithError(err).Debug("read")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		h.relay.HandleMessage(ctx, id, data)
	}
}
