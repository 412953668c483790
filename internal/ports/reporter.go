package ports

import (
	"context"

	"github.com/alejandrodnm/tradejournal/internal/domain"
)

// RiskReporter publica el estado de riesgo de una cuenta (gauges, consola...).
type RiskReporter interface {
	ReportMetrics(ctx context.Context, acct domain.Account, m domain.ExtendedMetrics) error
}
