package eod

// job.go: snapshot de fin de día para todas las cuentas.
//
// Por cada cuenta configurada: calcula métricas a la hora de referencia,
// guarda el DailySnapshot (upsert por día), sube el account high persistido
// si el calculado es mayor, invalida la caché y publica a los reporters.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/alejandrodnm/tradejournal/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Config contiene la configuración del job.
type Config struct {
	Workers           int     // cuentas procesadas en paralelo (0 = NumCPU)
	AccountsPerSecond float64 // ritmo de lecturas al store (0 = sin límite)
}

// Result resume una ejecución.
type Result struct {
	Processed int // snapshot guardado
	Skipped   int // cuenta sin starting balance o start date
	Failed    int
	Raised    int // account high persistido actualizado
}

// Job es el job de fin de día.
type Job struct {
	cfg       Config
	store     ports.Storage
	cache     ports.MetricsCache
	reporters []ports.RiskReporter
	limiter   *rate.Limiter
}

// NewJob crea un Job. cache puede ser nil.
func NewJob(cfg Config, store ports.Storage, cache ports.MetricsCache, reporters ...ports.RiskReporter) *Job {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	limit := rate.Inf
	if cfg.AccountsPerSecond > 0 {
		limit = rate.Limit(cfg.AccountsPerSecond)
	}
	return &Job{
		cfg:       cfg,
		store:     store,
		cache:     cache,
		reporters: reporters,
		limiter:   rate.NewLimiter(limit, cfg.Workers),
	}
}

// Run procesa todas las cuentas a la hora ref. Un fallo en una cuenta se
// loguea y cuenta, pero no aborta las demás. Solo devuelve error si no se
// pueden listar las cuentas o si el contexto se cancela.
func (j *Job) Run(ctx context.Context, ref time.Time) (Result, error) {
	start := time.Now()

	accounts, err := j.store.ListAccounts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("eod.Run: list accounts: %w", err)
	}

	var (
		mu  sync.Mutex
		res Result
	)
	record := func(fn func(r *Result)) {
		mu.Lock()
		fn(&res)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(j.cfg.Workers)

	for _, acct := range accounts {
		if err := j.limiter.Wait(ctx); err != nil {
			_ = g.Wait()
			return res, fmt.Errorf("eod.Run: %w", err)
		}
		g.Go(func() error {
			out, err := j.processAccount(ctx, acct, ref)
			switch {
			case err != nil:
				slog.Error("eod snapshot failed", "account", acct.ID, "err", err)
				record(func(r *Result) { r.Failed++ })
			case out == outcomeSkipped:
				slog.Debug("eod skipped unconfigured account", "account", acct.ID)
				record(func(r *Result) { r.Skipped++ })
			case out == outcomeRaised:
				record(func(r *Result) { r.Processed++; r.Raised++ })
			default:
				record(func(r *Result) { r.Processed++ })
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("eod job complete",
		"date", domain.DayOf(ref).Format("2006-01-02"),
		"accounts", len(accounts),
		"processed", res.Processed,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"raised_high", res.Raised,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

type outcome int

const (
	outcomeSaved outcome = iota
	outcomeSkipped
	outcomeRaised
)

func (j *Job) processAccount(ctx context.Context, acct domain.Account, ref time.Time) (outcome, error) {
	trades, err := j.store.ListTrades(ctx, acct.ID)
	if err != nil {
		return outcomeSaved, fmt.Errorf("eod.processAccount: %w", err)
	}

	m, ok := domain.ComputeExtendedMetrics(acct.Config, trades, ref)
	if !ok {
		return outcomeSkipped, nil
	}

	snap := domain.SnapshotFromMetrics(acct.ID, m)
	snap.ID = uuid.NewString()
	if err := j.store.SaveSnapshot(ctx, snap); err != nil {
		return outcomeSaved, fmt.Errorf("eod.processAccount: %w", err)
	}

	result := outcomeSaved
	stored := acct.Config.CurrentAccountHigh
	if !stored.Valid || m.AccountHigh.GreaterThan(stored.Decimal) {
		if err := j.store.UpdateAccountHigh(ctx, acct.ID, m.AccountHigh); err != nil {
			return outcomeSaved, fmt.Errorf("eod.processAccount: %w", err)
		}
		result = outcomeRaised
	}

	if j.cache != nil {
		j.cache.Invalidate(acct.ID)
	}

	for _, r := range j.reporters {
		if err := r.ReportMetrics(ctx, acct, m); err != nil {
			slog.Warn("reporter error", "account", acct.ID, "err", err)
		}
	}
	return result, nil
}
