package sim

import "sync"

// AlertEvent announces that a vehicle raised an emergency-stop alert.
type AlertEvent struct {
	VehicleID int   `json:"vehicle_id"`
	AtMs      int64 `json:"at_ms"`
}

type AlertHandler func(AlertEvent)

// eventBus fans alert notifications out to subscribers. There is no
// acknowledgement path.
type eventBus struct {
	mu       sync.RWMutex
	handlers []AlertHandler
}

func (b *eventBus) subscribe(h AlertHandler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

func (b *eventBus) emit(e AlertEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(e)
	}
}
