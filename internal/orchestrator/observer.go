package orchestrator

import (
	"sync"
	"time"

	"github.com/aristath/zappy/internal/events"
)

// BusObserver republishes run progress on an event bus: one RunProgressEvent
// per notification, one StageCompletedEvent per newly committed stage, and
// a RunCompletedEvent or RunFailedEvent at the end.
func BusObserver(bus *events.EventBus) Observer {
	var mu sync.Mutex
	seen := make(map[string]int)

	return func(p Progress) {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		active := make([]string, len(p.ActiveRoles))
		for i, r := range p.ActiveRoles {
			active[i] = string(r)
		}
		bus.Publish(events.RunProgressEvent{
			ID:          p.RunID,
			Keyword:     p.Topic,
			State:       string(p.State),
			ActiveRoles: active,
			Stages:      len(p.Stages),
			TotalTokens: p.TotalTokens,
			Timestamp:   now,
		})

		for _, s := range p.Stages[seen[p.RunID]:] {
			bus.Publish(events.StageCompletedEvent{
				ID:          p.RunID,
				Role:        string(s.Role),
				Content:     s.Content,
				Skipped:     s.Skipped,
				Provider:    s.Provider,
				Model:       s.Model,
				TotalTokens: s.Usage.TotalTokens,
				Timestamp:   s.Timestamp,
			})
		}
		seen[p.RunID] = len(p.Stages)

		switch p.State {
		case StateCompleted:
			bus.Publish(events.RunCompletedEvent{
				ID:          p.RunID,
				Keyword:     p.Topic,
				TotalTokens: p.TotalTokens,
				Warnings:    p.Warnings,
				Timestamp:   now,
			})
			delete(seen, p.RunID)
		case StateFailed:
			bus.Publish(events.RunFailedEvent{
				ID:        p.RunID,
				Keyword:   p.Topic,
				Role:      string(p.FailedRole),
				Err:       p.Err,
				Timestamp: now,
			})
			delete(seen, p.RunID)
		}
	}
}

// Observers fans one notification out to several observers in order.
func Observers(obs ...Observer) Observer {
	return func(p Progress) {
		for _, o := range obs {
			if o != nil {
				o(p)
			}
		}
	}
}
