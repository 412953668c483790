package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alejandrodnm/tradejournal/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

// Console implementa ports.RiskReporter y las salidas de la CLI.
type Console struct {
	out     io.Writer
	verbose bool
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole(verbose bool) *Console {
	return &Console{out: os.Stdout, verbose: verbose}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer, verbose bool) *Console {
	return &Console{out: w, verbose: verbose}
}

// ReportMetrics imprime el estado de riesgo de una cuenta.
func (c *Console) ReportMetrics(_ context.Context, acct domain.Account, m domain.ExtendedMetrics) error {
	status := "OK"
	if !m.IsWithinTrailingLimit || !m.IsWithinDailyLimit {
		status = "BREACH"
	}

	fmt.Fprintf(c.out, "\n[%s] %s (%s, %s) | %s\n",
		m.ReferenceTime.UTC().Format("2006-01-02 15:04"),
		accountLabel(acct), acct.Config.AccountType, m.Broker, status)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value", "Buffer", "OK")
	table.Append("Balance", usd(m.CurrentBalance), "", "")
	table.Append("Account high", usd(m.AccountHigh), "", "")
	table.Append("Trailing limit", usd(m.CalculatedTrailingLimit), usd(m.TrailingBuffer), yesNo(m.IsWithinTrailingLimit))
	table.Append("Daily limit", nullUSD(m.CalculatedDailyLimit), nullUSD(m.DailyBuffer), yesNo(m.IsWithinDailyLimit))
	table.Append("Net P&L to date", usd(m.NetPnLToDate), "", "")
	table.Append("Daily P&L", usd(m.DailyPnL), "", "")
	table.Render()

	if c.verbose {
		fmt.Fprintf(c.out, "  Start $%s | trailing $%s | %d closed trades\n",
			m.StartingBalance.StringFixed(2), m.TrailingDrawdownAmount.StringFixed(2), m.ClosedTrades)
		fmt.Fprintf(c.out, "  Fees: total %s | today %s | avg/trade %s | impact %s%%\n",
			usd(m.TotalFeesToDate), usd(m.DailyFees), usd(m.AverageFeePerTrade),
			m.FeeImpactPercentage.StringFixed(2))
		fmt.Fprintf(c.out, "  Gross P&L to date: %s\n", usd(m.GrossPnLToDate))
	}

	c.PrintWarnings(m.Warnings)
	return nil
}

// PrintNotConfigured avisa de una cuenta sin configuración de riesgo.
func (c *Console) PrintNotConfigured(acct domain.Account) {
	fmt.Fprintf(c.out, "%s: risk config incomplete (starting balance and start date required)\n",
		accountLabel(acct))
}

// PrintAccounts imprime la lista de cuentas.
func (c *Console) PrintAccounts(accounts []domain.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(c.out, "No accounts found")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Name", "Type", "Start", "Trailing", "Daily loss", "High", "Since")
	for _, a := range accounts {
		since := "-"
		if a.Config.AccountStartDate != nil {
			since = a.Config.AccountStartDate.UTC().Format("2006-01-02")
		}
		table.Append(
			shortID(a.ID),
			a.Name,
			string(a.Config.AccountType),
			nullUSD(a.Config.StartingBalance),
			usd(a.Config.TrailingAmount()),
			nullUSD(a.Config.DailyLossLimit),
			nullUSD(a.Config.CurrentAccountHigh),
			since,
		)
	}
	table.Render()
}

// PrintSnapshots imprime el histórico de cierres diarios.
func (c *Console) PrintSnapshots(acct domain.Account, snaps []domain.DailySnapshot) {
	if len(snaps) == 0 {
		fmt.Fprintf(c.out, "%s: no snapshots in range\n", accountLabel(acct))
		return
	}

	fmt.Fprintf(c.out, "\n=== %s: %d days ===\n", accountLabel(acct), len(snaps))
	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "EOD balance", "High", "Trailing", "Daily limit", "Day P&L", "Fees", "Trail", "Daily")
	breaches := 0
	for _, s := range snaps {
		if !s.IsWithinTrailingLimit || !s.IsWithinDailyLimit {
			breaches++
		}
		table.Append(
			s.Date.Format("2006-01-02"),
			usd(s.EndOfDayBalance),
			usd(s.AccountHigh),
			usd(s.CalculatedLimit),
			nullUSD(s.DailyLimit),
			usd(s.DailyPnL),
			usd(s.DailyFees),
			yesNo(s.IsWithinTrailingLimit),
			yesNo(s.IsWithinDailyLimit),
		)
	}
	table.Render()

	if breaches > 0 {
		fmt.Fprintf(c.out, "  ⚠ %d day(s) outside limits\n", breaches)
	}
}

// PrintValidation imprime el resultado de validar un trade o una config.
func (c *Console) PrintValidation(label string, r domain.ValidationResult) {
	if r.IsValid {
		fmt.Fprintf(c.out, "%s: valid\n", label)
	} else {
		fmt.Fprintf(c.out, "%s: INVALID\n", label)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(c.out, "  ✗ %s\n", e)
	}
	c.PrintWarnings(r.Warnings)
}

// PrintWarnings imprime avisos, uno por línea.
func (c *Console) PrintWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(c.out, "  ⚠ %s\n", w)
	}
}

// --- helpers ---

func accountLabel(a domain.Account) string {
	if a.Name != "" {
		return a.Name
	}
	return shortID(a.ID)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func usd(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

func nullUSD(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return usd(d.Decimal)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "NO"
}
