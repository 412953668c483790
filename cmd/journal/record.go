package main

// record.go: import de cuentas y trades desde un archivo YAML.
//
//	accounts:
//	  - name: Combine 50K
//	    type: TOPSTEP_50K
//	    starting_balance: 50000
//	    daily_loss_limit: 1000
//	    start_date: 2024-03-01
//	    data_source: topstep
//	    trades:
//	      - {symbol: MESH4, market: MICRO_FUTURES, quantity: 2, entry_price: 5100,
//	         exit_price: 5104.5, net_pnl: 43.52, entry_date: 2024-03-01T15:04:00Z}
//	trades:                       # trades de cuentas ya existentes
//	  - account_id: 0f8c2a1e-...
//	    symbol: NQ
//	    ...
//
// Si un trade no trae commission ni fees, se rellenan con la tabla de fees
// del broker detectado para la cuenta.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/tradejournal/internal/adapters/notify"
	"github.com/alejandrodnm/tradejournal/internal/application/account"
	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type recordFileYAML struct {
	Accounts []accountYAML `yaml:"accounts"`
	Trades   []tradeYAML   `yaml:"trades"`
}

type accountYAML struct {
	Name                string      `yaml:"name"`
	Type                string      `yaml:"type"`
	StartingBalance     *float64    `yaml:"starting_balance"`
	TrailingDrawdown    *float64    `yaml:"trailing_drawdown"`
	DailyLossLimit      *float64    `yaml:"daily_loss_limit"`
	StartDate           *time.Time  `yaml:"start_date"`
	LiveFunded          bool        `yaml:"live_funded"`
	FirstPayoutReceived bool        `yaml:"first_payout_received"`
	DataSource          string      `yaml:"data_source"`
	Trades              []tradeYAML `yaml:"trades"`
}

type tradeYAML struct {
	AccountID  string     `yaml:"account_id"`
	Symbol     string     `yaml:"symbol"`
	Market     string     `yaml:"market"`
	Side       string     `yaml:"side"`
	Status     string     `yaml:"status"`
	Quantity   float64    `yaml:"quantity"`
	EntryPrice float64    `yaml:"entry_price"`
	ExitPrice  *float64   `yaml:"exit_price"`
	StopLoss   *float64   `yaml:"stop_loss"`
	TakeProfit *float64   `yaml:"take_profit"`
	RiskAmount *float64   `yaml:"risk_amount"`
	NetPnL     *float64   `yaml:"net_pnl"`
	GrossPnL   *float64   `yaml:"gross_pnl"`
	Commission *float64   `yaml:"commission"`
	EntryFees  *float64   `yaml:"entry_fees"`
	ExitFees   *float64   `yaml:"exit_fees"`
	Multiplier *float64   `yaml:"multiplier"`
	EntryDate  time.Time  `yaml:"entry_date"`
	ExitDate   *time.Time `yaml:"exit_date"`
	Notes      string     `yaml:"notes"`
}

// recordSummary cuenta lo importado.
type recordSummary struct {
	Accounts int
	Trades   int
	Rejected int
}

func recordFile(ctx context.Context, svc *account.Service, console *notify.Console, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("record: read %q: %w", path, err)
	}
	sum, err := recordYAML(ctx, svc, console, data)
	if err != nil {
		return err
	}
	slog.Info("record complete",
		"file", path,
		"accounts", sum.Accounts,
		"trades", sum.Trades,
		"rejected", sum.Rejected,
	)
	return nil
}

// recordYAML importa el contenido ya leído. Las filas inválidas se imprimen
// y se saltan; solo los errores de storage abortan.
func recordYAML(ctx context.Context, svc *account.Service, console *notify.Console, data []byte) (recordSummary, error) {
	var file recordFileYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return recordSummary{}, fmt.Errorf("record: parse YAML: %w", err)
	}

	var sum recordSummary
	for _, a := range file.Accounts {
		cfg := account.NormalizeConfig(a.config())
		acct, warnings, err := svc.CreateAccount(ctx, a.Name, cfg)
		if errors.Is(err, account.ErrInvalidConfig) {
			console.PrintValidation("account "+a.Name, domain.ValidateAccountConfig(cfg))
			sum.Rejected++
			continue
		}
		if err != nil {
			return sum, err
		}
		console.PrintWarnings(warnings)
		sum.Accounts++

		broker := domain.DetectBroker(cfg.AccountType, cfg.DataSource)
		for _, t := range a.Trades {
			t.AccountID = acct.ID
			if err := recordTrade(ctx, svc, console, t, broker, &sum); err != nil {
				return sum, err
			}
		}
	}

	accountBrokers := make(map[string]domain.Broker)
	for _, t := range file.Trades {
		broker, ok := accountBrokers[t.AccountID]
		if !ok {
			acct, err := svc.Account(ctx, t.AccountID)
			if err != nil {
				return sum, err
			}
			broker = domain.DetectBroker(acct.Config.AccountType, acct.Config.DataSource)
			accountBrokers[t.AccountID] = broker
		}
		if err := recordTrade(ctx, svc, console, t, broker, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func recordTrade(ctx context.Context, svc *account.Service, console *notify.Console, t tradeYAML, broker domain.Broker, sum *recordSummary) error {
	label := fmt.Sprintf("trade %s %s", t.Symbol, t.EntryDate.Format("2006-01-02 15:04"))

	entry := t.entry(broker)
	_, warnings, err := svc.RecordTrade(ctx, entry)
	if errors.Is(err, account.ErrInvalidTrade) {
		_, res := account.ValidateEntry(entry)
		console.PrintValidation(label, res)
		sum.Rejected++
		return nil
	}
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		console.PrintValidation(label, domain.ValidationResult{IsValid: true, Warnings: warnings})
	}
	sum.Trades++
	return nil
}

func (a accountYAML) config() domain.AccountConfig {
	cfg := domain.AccountConfig{
		AccountType:            domain.ParseAccountType(a.Type),
		StartingBalance:        nullMoney(a.StartingBalance),
		TrailingDrawdownAmount: nullMoney(a.TrailingDrawdown),
		DailyLossLimit:         nullMoney(a.DailyLossLimit),
		IsLiveFunded:           a.LiveFunded,
		FirstPayoutReceived:    a.FirstPayoutReceived,
		DataSource:             a.DataSource,
	}
	if a.StartDate != nil {
		d := a.StartDate.UTC()
		cfg.AccountStartDate = &d
	}
	return cfg
}

func (t tradeYAML) entry(broker domain.Broker) account.TradeEntry {
	market := domain.ParseMarketType(t.Market)
	if market == "" {
		market = domain.MarketFutures
	}
	in := domain.TradeInput{
		Symbol:             t.Symbol,
		Market:             market,
		Quantity:           t.Quantity,
		EntryPrice:         t.EntryPrice,
		ExitPrice:          t.ExitPrice,
		StopLoss:           t.StopLoss,
		TakeProfit:         t.TakeProfit,
		RiskAmount:         t.RiskAmount,
		NetPnL:             t.NetPnL,
		GrossPnL:           t.GrossPnL,
		Commission:         deref(t.Commission),
		EntryFees:          deref(t.EntryFees),
		ExitFees:           deref(t.ExitFees),
		ContractMultiplier: t.Multiplier,
	}

	// Sin fees declarados: tabla del broker (solo futuros).
	if t.Commission == nil && t.EntryFees == nil && t.ExitFees == nil && market.IsFutures() && t.Quantity > 0 {
		entry, exit := domain.Fees(t.Symbol, broker).ForQuantity(decimal.NewFromFloat(t.Quantity))
		in.EntryFees = entry.InexactFloat64()
		in.ExitFees = exit.InexactFloat64()
	}

	return account.TradeEntry{
		AccountID: t.AccountID,
		Side:      domain.Side(t.Side),
		Status:    domain.TradeStatus(t.Status),
		EntryDate: t.EntryDate,
		ExitDate:  t.ExitDate,
		Notes:     t.Notes,
		Input:     in,
	}
}

func nullMoney(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return domain.NullMoney(*f)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
