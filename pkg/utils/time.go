package utils

import (
	"context"
	"time"
)

// RunOnInterval runs the given fn once immediately and then once every
// interval, all in a background goroutine, until ctx is cancelled.
func RunOnInterval(ctx context.Context, fn func(), interval time.Duration) {
	timer := time.NewTicker(interval)

	go func() {
		defer timer.Stop()

		fn()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				fn()
			}
		}
	}()
}
