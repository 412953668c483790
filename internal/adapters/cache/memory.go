package cache

import (
	"sync"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
)

type entry struct {
	metrics  domain.ExtendedMetrics
	storedAt time.Time
}

// Memory implementa ports.MetricsCache en memoria con un TTL corto.
// No hay singleton: cada servicio recibe su instancia.
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]entry // accountID → métricas calculadas
}

// NewMemory crea una caché cuyas entradas expiran tras ttl.
// ttl <= 0 desactiva la caché (Get siempre falla).
func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, time.Now)
}

// NewMemoryWithClock crea una caché con reloj inyectado, para tests.
func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached metrics of an account if they have not expired.
func (m *Memory) Get(accountID string) (domain.ExtendedMetrics, bool) {
	if m.ttl <= 0 {
		return domain.ExtendedMetrics{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[accountID]
	if !ok {
		return domain.ExtendedMetrics{}, false
	}
	if m.now().Sub(e.storedAt) >= m.ttl {
		delete(m.entries, accountID)
		return domain.ExtendedMetrics{}, false
	}
	return e.metrics, true
}

// Set stores metrics for an account, replacing any previous entry.
func (m *Memory) Set(accountID string, metrics domain.ExtendedMetrics) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[accountID] = entry{metrics: metrics, storedAt: m.now()}
	m.mu.Unlock()
}

// Invalidate drops the entry of an account.
func (m *Memory) Invalidate(accountID string) {
	m.mu.Lock()
	delete(m.entries, accountID)
	m.mu.Unlock()
}
