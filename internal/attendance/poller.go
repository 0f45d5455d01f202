package attendance

import (
	"context"
	"time"
)

// StatsUpdate is one delivery from the statistics poller.
type StatsUpdate struct {
	Stats Statistics
	Err   error
}

// PollStatistics re-fetches the session statistics on a fixed interval and
// streams results until ctx is cancelled. The caller ties ctx to screen
// focus: cancel on blur and the goroutine and channel go away. The first
// fetch happens immediately.
func (l *Lifecycle) PollStatistics(ctx context.Context, interval time.Duration) <-chan StatsUpdate {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	out := make(chan StatsUpdate)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			stats, err := l.Statistics(ctx)
			select {
			case out <- StatsUpdate{Stats: stats, Err: err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
