package player

import (
	"context"
	"time"
)

// Run ticks p every interval until it finishes or ctx is done.
func Run(ctx context.Context, p *Player, interval time.Duration) error {
	if !p.Playing() {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if !p.Tick() {
				return nil
			}
		}
	}
}
