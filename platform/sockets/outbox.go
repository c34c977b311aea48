package socket

import (
	"context"
	"errors"
)

const outboxSize = 64

var ErrBackpressure = errors.New("client is not reading fast enough")

// outbox queues frames for a single writer goroutine so a slow client never
// blocks the game lock. Frames beyond its capacity are dropped.
type outbox struct {
	frames chan []byte
}

func newOutbox(size int) *outbox {
	return &outbox{frames: make(chan []byte, size)}
}

func (o *outbox) Send(data []byte) error {
	select {
	case o.frames <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// drain writes queued frames in order until ctx ends or write fails.
func (o *outbox) drain(ctx context.Context, write func(context.Context, []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-o.frames:
			if err := write(ctx, data); err != nil {
				return err
			}
		}
	}
}
