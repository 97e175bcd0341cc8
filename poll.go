package websocket

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// waitAvailable blocks until t has at least one byte to read.
//
// Availability is checked every interval until ctx is done, which is
// reported as ReadTimeout, or the transport disconnects with nothing left
// to read, which is reported as NotAvailable. Data that arrived by the
// time ctx is done is still reported as available.
func waitAvailable(ctx context.Context, t Transport, interval time.Duration) error {
	if t.Available() > 0 {
		return nil
	}

	lim := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if t.Available() > 0 {
			return nil
		}
		if !t.Connected() {
			return newError(NotAvailable, errors.New("transport disconnected"))
		}

		r := lim.Reserve()
		timer := time.NewTimer(r.Delay())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			r.Cancel()
			if t.Available() > 0 {
				return nil
			}
			return newError(ReadTimeout, ctx.Err())
		}
	}
}
