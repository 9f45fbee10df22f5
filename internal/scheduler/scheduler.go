package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task right away and then on each tick until ctx is done.
// A tick that arrives while the previous run is still going is skipped.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	var running atomic.Bool
	run := func() {
		if !running.CompareAndSwap(false, true) {
			log.Printf("[%s] previous run still going, skipping tick", name)
			return
		}
		go func() {
			defer running.Store(false)
			if err := task(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}()
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
