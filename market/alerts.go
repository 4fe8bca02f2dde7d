package market

import (
	"context"
	"sync"
)

// StaticAlerts is an in-memory AlertSource. The dashboard's alert engine
// (or a test) replaces the active set wholesale; the monitor polls it.
type StaticAlerts struct {
	mu     sync.RWMutex
	active []Alert
}

func NewStaticAlerts() *StaticAlerts {
	return &StaticAlerts{}
}

// SetActive replaces the active alert list. The given order is preserved.
func (s *StaticAlerts) SetActive(alerts []Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append([]Alert(nil), alerts...)
}

func (s *StaticAlerts) ActiveAlerts(ctx context.Context) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Alert(nil), s.active...), nil
}

var _ AlertSource = (*StaticAlerts)(nil)
