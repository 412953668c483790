package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/tradejournal/config"
	"github.com/alejandrodnm/tradejournal/internal/adapters/cache"
	"github.com/alejandrodnm/tradejournal/internal/adapters/notify"
	"github.com/alejandrodnm/tradejournal/internal/adapters/storage"
	"github.com/alejandrodnm/tradejournal/internal/adapters/telemetry"
	"github.com/alejandrodnm/tradejournal/internal/application/account"
	"github.com/alejandrodnm/tradejournal/internal/application/eod"
	"github.com/alejandrodnm/tradejournal/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug and print fee details")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	accountID := flag.String("account", "", "print the risk report of one account")
	list := flag.Bool("list", false, "list accounts")
	history := flag.Int("history", 0, "with -account: print the last N daily snapshots")
	record := flag.String("record", "", "load accounts and trades from a YAML file")
	runEOD := flag.Bool("eod", false, "run the end-of-day snapshot job once and exit")
	daemon := flag.Bool("daemon", false, "run the end-of-day scheduler and /metrics until SIGINT/SIGTERM")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	metricsCache := cache.NewMemory(cfg.CacheTTL())
	svc := account.NewService(store, metricsCache)
	console := notify.NewConsole(*verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *record != "":
		err = recordFile(ctx, svc, console, *record)
	case *list:
		err = printAccounts(ctx, svc, console)
	case *accountID != "" && *history > 0:
		err = printHistory(ctx, svc, console, *accountID, *history)
	case *accountID != "":
		err = printReport(ctx, svc, console, *accountID)
	case *runEOD:
		err = runJobOnce(ctx, cfg, store, metricsCache, console)
	case *daemon:
		err = runDaemon(ctx, cfg, store, metricsCache)
	default:
		err = printDashboard(ctx, svc, console)
	}

	if err != nil {
		slog.Error("journal exited with error", "err", err)
		os.Exit(1)
	}
}

func printAccounts(ctx context.Context, svc *account.Service, console *notify.Console) error {
	accts, err := svc.Accounts(ctx)
	if err != nil {
		return err
	}
	console.PrintAccounts(accts)
	return nil
}

func printReport(ctx context.Context, svc *account.Service, console *notify.Console, id string) error {
	acct, m, ok, err := svc.Metrics(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		console.PrintNotConfigured(acct)
		return nil
	}
	return console.ReportMetrics(ctx, acct, m)
}

func printHistory(ctx context.Context, svc *account.Service, console *notify.Console, id string, days int) error {
	acct, snaps, err := svc.History(ctx, id, days)
	if err != nil {
		return err
	}
	console.PrintSnapshots(acct, snaps)
	return nil
}

// printDashboard imprime el reporte de todas las cuentas.
func printDashboard(ctx context.Context, svc *account.Service, console *notify.Console) error {
	accts, err := svc.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		console.PrintAccounts(nil)
		return nil
	}
	for _, a := range accts {
		if err := printReport(ctx, svc, console, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func newJob(cfg *config.Config, store ports.Storage, mc ports.MetricsCache, reporters ...ports.RiskReporter) *eod.Job {
	return eod.NewJob(eod.Config{
		Workers:           cfg.Job.Workers,
		AccountsPerSecond: cfg.Job.AccountsPerSecond,
	}, store, mc, reporters...)
}

func runJobOnce(ctx context.Context, cfg *config.Config, store ports.Storage, mc ports.MetricsCache, console *notify.Console) error {
	res, err := newJob(cfg, store, mc, console).Run(ctx, time.Now())
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return errors.New("eod job: some accounts failed, see log")
	}
	return nil
}

func runDaemon(ctx context.Context, cfg *config.Config, store ports.Storage, mc ports.MetricsCache) error {
	reporters := []ports.RiskReporter{}
	if cfg.Metrics.Addr != "" {
		prom := telemetry.NewPrometheus()
		srv := prom.Serve(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		reporters = append(reporters, prom)
		slog.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
	}

	sched := eod.NewScheduler(newJob(cfg, store, mc, reporters...), cfg.Job.Schedule)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	slog.Info("journal daemon running", "next_eod", sched.Next().Format(time.RFC3339))
	<-ctx.Done()
	slog.Info("journal daemon stopping")
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stderr: stdout queda para las tablas.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
