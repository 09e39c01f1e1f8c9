package logctx

import (
	"fmt"
	"gelfsend/internal/global"
	"io"
	"strings"
	"time"
)

const (
	repeatWindow   time.Duration = 5 * time.Second
	repeatMinimum  int           = 10
	repeatCooldown time.Duration = 1 * time.Minute
)

// Blocks until the watcher has drained and exited
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Wakes the watcher so it can observe Done
func (logger *Logger) Wake() {
	logger.mutex.Lock()
	logger.cond.Broadcast()
	logger.mutex.Unlock()
}

// Starts the single writer goroutine for logger.
// Repeated identical messages inside repeatWindow are collapsed into a periodic summary line.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	if logger.Done != nil {
		go func() {
			<-logger.Done
			logger.Wake()
		}()
	}

	go func() {
		defer logger.wg.Done()

		var repeats repeatState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			now := time.Now()
			if event.Message != "" && event.Message == repeats.lastMsg && now.Sub(event.Timestamp) <= repeatWindow {
				repeats.count++
				if repeats.count >= repeatMinimum && now.Sub(repeats.lastNotified) >= repeatCooldown {
					summary := Event{
						Timestamp: event.Timestamp,
						Tags:      event.Tags,
						Severity:  global.InfoLog,
						Message:   fmt.Sprintf("Suppressed %d repeated messages: %s", repeats.count, strings.TrimRight(repeats.lastMsg, "\n")),
					}
					fmt.Fprintln(output, summary.Format())
					repeats.lastNotified = now
					repeats.count = 0
				}
				continue
			}
			repeats.lastMsg = event.Message
			repeats.count = 1

			fmt.Fprint(output, event.Format())
		}
	}()
}

// Pops the oldest event, waiting if none. Returns false when done and drained.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
		}
		logger.cond.Wait()
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}
