package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "journal"

// Prometheus implementa ports.RiskReporter publicando gauges por cuenta.
type Prometheus struct {
	reg            *prometheus.Registry
	balance        *prometheus.GaugeVec
	accountHigh    *prometheus.GaugeVec
	trailingLimit  *prometheus.GaugeVec
	trailingBuffer *prometheus.GaugeVec
	dailyPnL       *prometheus.GaugeVec
	totalFees      *prometheus.GaugeVec
	withinLimits   *prometheus.GaugeVec
	snapshotsTotal *prometheus.CounterVec
}

func gauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help},
		[]string{"account"},
	)
}

// NewPrometheus crea los collectors y los registra en un registry propio.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		reg:            prometheus.NewRegistry(),
		balance:        gauge("balance_usd", "Current account balance"),
		accountHigh:    gauge("account_high_usd", "Account high-water mark"),
		trailingLimit:  gauge("trailing_limit_usd", "Trailing drawdown floor"),
		trailingBuffer: gauge("trailing_buffer_usd", "Distance from balance to the trailing floor"),
		dailyPnL:       gauge("daily_pnl_usd", "Net P&L of the reference day"),
		totalFees:      gauge("fees_to_date_usd", "Fees paid since account start"),
		withinLimits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "within_limit", Help: "1 if the account respects the limit"},
			[]string{"account", "limit"},
		),
		snapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "reports_total", Help: "Risk reports published"},
			[]string{"account"},
		),
	}
	p.reg.MustRegister(
		p.balance, p.accountHigh, p.trailingLimit, p.trailingBuffer,
		p.dailyPnL, p.totalFees, p.withinLimits, p.snapshotsTotal,
	)
	return p
}

// Registry expone el registry para tests y handlers.
func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

// ReportMetrics actualiza los gauges de la cuenta.
func (p *Prometheus) ReportMetrics(_ context.Context, acct domain.Account, m domain.ExtendedMetrics) error {
	id := acct.ID
	p.balance.WithLabelValues(id).Set(toFloat(m.CurrentBalance))
	p.accountHigh.WithLabelValues(id).Set(toFloat(m.AccountHigh))
	p.trailingLimit.WithLabelValues(id).Set(toFloat(m.CalculatedTrailingLimit))
	p.trailingBuffer.WithLabelValues(id).Set(toFloat(m.TrailingBuffer))
	p.dailyPnL.WithLabelValues(id).Set(toFloat(m.DailyPnL))
	p.totalFees.WithLabelValues(id).Set(toFloat(m.TotalFeesToDate))
	p.withinLimits.WithLabelValues(id, "trailing").Set(boolGauge(m.IsWithinTrailingLimit))
	p.withinLimits.WithLabelValues(id, "daily").Set(boolGauge(m.IsWithinDailyLimit))
	p.snapshotsTotal.WithLabelValues(id).Inc()
	return nil
}

// Handler devuelve el handler HTTP de /metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// Serve arranca el endpoint /metrics en background. El caller hace Shutdown.
func (p *Prometheus) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", "addr", addr, "err", err)
		}
	}()
	return srv
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
