package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/alejandrodnm/tradejournal/internal/ports"
	"github.com/google/uuid"
)

var (
	// ErrInvalidConfig se devuelve cuando ValidateAccountConfig reporta errores.
	ErrInvalidConfig = errors.New("invalid account config")
	// ErrInvalidTrade se devuelve cuando ValidateTrade reporta errores.
	ErrInvalidTrade = errors.New("invalid trade")
)

// TradeEntry es un trade tal como llega de la CLI o de un import.
// Los números pasan por el validador; el resto son metadatos.
type TradeEntry struct {
	AccountID string
	Side      domain.Side
	Status    domain.TradeStatus // vacío = CLOSED si hay exit price y net P&L
	EntryDate time.Time
	ExitDate  *time.Time
	Notes     string
	Input     domain.TradeInput
}

// Service orquesta cuentas, trades y métricas cacheadas.
// El dominio calcula; el servicio persiste e invalida la caché.
type Service struct {
	store ports.Storage
	cache ports.MetricsCache
	now   func() time.Time
}

// NewService crea un Service. cache puede ser nil (sin caché).
func NewService(store ports.Storage, cache ports.MetricsCache) *Service {
	return &Service{store: store, cache: cache, now: time.Now}
}

// WithClock sustituye el reloj, para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateAccount valida la config y guarda una cuenta nueva.
// Devuelve los warnings de validación junto a la cuenta creada.
func (s *Service) CreateAccount(ctx context.Context, name string, cfg domain.AccountConfig) (domain.Account, []string, error) {
	cfg = NormalizeConfig(cfg)
	res := domain.ValidateAccountConfig(cfg)
	if !res.IsValid {
		return domain.Account{}, res.Warnings, fmt.Errorf("account.CreateAccount: %w: %s",
			ErrInvalidConfig, strings.Join(res.Errors, "; "))
	}

	now := s.now().UTC()
	acct := domain.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return domain.Account{}, res.Warnings, fmt.Errorf("account.CreateAccount: save: %w", err)
	}

	slog.Info("account created",
		"id", acct.ID,
		"name", name,
		"type", cfg.AccountType,
		"starting_balance", cfg.StartingBalance.Decimal.StringFixed(2),
	)
	return acct, res.Warnings, nil
}

// UpdateAccountConfig reemplaza la config de riesgo de una cuenta.
func (s *Service) UpdateAccountConfig(ctx context.Context, id string, cfg domain.AccountConfig) ([]string, error) {
	cfg = NormalizeConfig(cfg)
	res := domain.ValidateAccountConfig(cfg)
	if !res.IsValid {
		return res.Warnings, fmt.Errorf("account.UpdateAccountConfig: %w: %s",
			ErrInvalidConfig, strings.Join(res.Errors, "; "))
	}

	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return res.Warnings, fmt.Errorf("account.UpdateAccountConfig: %w", err)
	}
	acct.Config = cfg
	acct.UpdatedAt = s.now().UTC()

	if err := s.store.SaveAccount(ctx, acct); err != nil {
		return res.Warnings, fmt.Errorf("account.UpdateAccountConfig: save: %w", err)
	}
	s.invalidate(id)
	return res.Warnings, nil
}

// RecordTrade valida, redondea y guarda un trade. Los warnings del
// validador no bloquean; los errores sí (ErrInvalidTrade).
func (s *Service) RecordTrade(ctx context.Context, e TradeEntry) (domain.Trade, []string, error) {
	e, res := ValidateEntry(e)
	if !res.IsValid {
		return domain.Trade{}, res.Warnings, fmt.Errorf("account.RecordTrade: %w: %s",
			ErrInvalidTrade, strings.Join(res.Errors, "; "))
	}

	if _, err := s.store.GetAccount(ctx, e.AccountID); err != nil {
		return domain.Trade{}, res.Warnings, fmt.Errorf("account.RecordTrade: %w", err)
	}

	san := res.Sanitized
	trade := domain.Trade{
		ID:                 uuid.NewString(),
		AccountID:          e.AccountID,
		Symbol:             domain.NormalizeSymbol(e.Input.Symbol),
		Market:             e.Input.Market,
		Side:               e.Side,
		Quantity:           san.Quantity,
		EntryPrice:         san.EntryPrice,
		ExitPrice:          san.ExitPrice,
		EntryDate:          e.EntryDate.UTC(),
		ExitDate:           utcPtr(e.ExitDate),
		Status:             e.Status,
		NetPnL:             san.NetPnL,
		GrossPnL:           san.GrossPnL,
		Commission:         san.Commission,
		EntryFees:          san.EntryFees,
		ExitFees:           san.ExitFees,
		ContractMultiplier: san.ContractMultiplier,
		Notes:              e.Notes,
	}
	if trade.Status == "" {
		trade.Status = domain.TradeOpen
		if trade.ExitPrice.Valid && trade.NetPnL.Valid {
			trade.Status = domain.TradeClosed
		}
	}

	if err := s.store.SaveTrade(ctx, trade); err != nil {
		return domain.Trade{}, res.Warnings, fmt.Errorf("account.RecordTrade: save: %w", err)
	}
	s.invalidate(e.AccountID)

	slog.Debug("trade recorded",
		"id", trade.ID,
		"account", trade.AccountID,
		"symbol", trade.Symbol,
		"status", trade.Status,
		"warnings", len(res.Warnings),
	)
	return trade, res.Warnings, nil
}

// Metrics devuelve las métricas extendidas de una cuenta a la hora actual.
// ok es false si la cuenta no tiene starting balance o start date.
func (s *Service) Metrics(ctx context.Context, id string) (domain.Account, domain.ExtendedMetrics, bool, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, domain.ExtendedMetrics{}, false, fmt.Errorf("account.Metrics: %w", err)
	}

	if s.cache != nil {
		if m, ok := s.cache.Get(id); ok {
			return acct, m, true, nil
		}
	}

	trades, err := s.store.ListTrades(ctx, id)
	if err != nil {
		return acct, domain.ExtendedMetrics{}, false, fmt.Errorf("account.Metrics: %w", err)
	}

	m, ok := domain.ComputeExtendedMetrics(acct.Config, trades, s.now())
	if !ok {
		return acct, domain.ExtendedMetrics{}, false, nil
	}
	if s.cache != nil {
		s.cache.Set(id, m)
	}
	return acct, m, true, nil
}

// Account devuelve una cuenta por ID.
func (s *Service) Account(ctx context.Context, id string) (domain.Account, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account.Account: %w", err)
	}
	return acct, nil
}

// Accounts lista todas las cuentas.
func (s *Service) Accounts(ctx context.Context) ([]domain.Account, error) {
	accts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("account.Accounts: %w", err)
	}
	return accts, nil
}

// History devuelve los snapshots de los últimos days días (hoy incluido).
func (s *Service) History(ctx context.Context, id string, days int) (domain.Account, []domain.DailySnapshot, error) {
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, nil, fmt.Errorf("account.History: %w", err)
	}
	if days <= 0 {
		days = 1
	}
	to := s.now().UTC()
	from := to.AddDate(0, 0, -(days - 1))

	snaps, err := s.store.ListSnapshots(ctx, id, from, to)
	if err != nil {
		return acct, nil, fmt.Errorf("account.History: %w", err)
	}
	return acct, snaps, nil
}

// NormalizeConfig pasa el tipo de cuenta a mayúsculas. Vacío es CUSTOM.
func NormalizeConfig(cfg domain.AccountConfig) domain.AccountConfig {
	cfg.AccountType = domain.ParseAccountType(string(cfg.AccountType))
	if cfg.AccountType == "" {
		cfg.AccountType = domain.AccountCustom
	}
	return cfg
}

// ValidateEntry normaliza market, side y status de e y lo valida entero:
// los números con domain.ValidateTrade, más enums y fechas. Devuelve la
// entrada normalizada. Vacíos: market FUTURES, side LONG, status derivado.
func ValidateEntry(e TradeEntry) (TradeEntry, domain.ValidationResult) {
	e.Input.Market = domain.ParseMarketType(string(e.Input.Market))
	if e.Input.Market == "" {
		e.Input.Market = domain.MarketFutures
	}
	e.Side = domain.ParseSide(string(e.Side))
	if e.Side == "" {
		e.Side = domain.SideLong
	}
	e.Status = domain.ParseTradeStatus(string(e.Status))

	res := domain.ValidateTrade(e.Input)
	var errs []string
	if !e.Input.Market.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown market %q", e.Input.Market))
	}
	if !e.Side.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown side %q", e.Side))
	}
	if e.Status != "" && !e.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown status %q", e.Status))
	}
	if e.EntryDate.IsZero() {
		errs = append(errs, "entry date is required")
	}
	if e.ExitDate != nil && e.ExitDate.Before(e.EntryDate) {
		errs = append(errs, "exit date before entry date")
	}
	if len(errs) > 0 {
		res.Errors = append(res.Errors, errs...)
		res.IsValid = false
		res.Sanitized = nil
	}
	return e, res
}

func (s *Service) invalidate(id string) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
