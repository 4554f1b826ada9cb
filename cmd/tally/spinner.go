package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jrsteele09/tally-client/activity"
)

var spinnerFrames = []string{"|", "/", "-", `\`}

// showActivity draws a spinner on w while the tracker is busy. The returned
// func stops it and clears the line.
func showActivity(tracker *activity.Tracker, w io.Writer) func() {
	busy, unsubscribe := tracker.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		on, frame := false, 0
		for {
			select {
			case b, ok := <-busy:
				if !ok {
					if on {
						fmt.Fprint(w, "\r\033[K")
					}
					return
				}
				if on && !b {
					fmt.Fprint(w, "\r\033[K")
				}
				on = b
			case <-ticker.C:
				if on {
					fmt.Fprintf(w, "\r%s working", spinnerFrames[frame%len(spinnerFrames)])
					frame++
				}
			}
		}
	}()
	return func() {
		unsubscribe()
		wg.Wait()
	}
}
