package ports

import "github.com/alejandrodnm/tradejournal/internal/domain"

// MetricsCache guarda snapshots de métricas por account ID.
// Es el caller quien invalida: cada trade nuevo o cambio de settings
// debe llamar a Invalidate.
type MetricsCache interface {
	Get(accountID string) (domain.ExtendedMetrics, bool)
	Set(accountID string, m domain.ExtendedMetrics)
	Invalidate(accountID string)
}
