// Package notify sends transactional email. Delivery is best effort: the
// Notifier logs and counts failures and never returns them to callers.
package notify

import (
	"bytes"
	"context"
	"html/template"

	"cashlytic-server/src/metrics"
	"cashlytic-server/src/models"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var budgetAlertTmpl = template.Must(template.New("budget_alert").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: -apple-system, sans-serif; background: #f6f9fc; padding: 20px;">
    <div style="max-width: 560px; margin: 0 auto; background: #ffffff; padding: 24px; border-radius: 6px;">
      <h1 style="color: #1f2937;">Budget Alert</h1>
      <p>Hello {{.UserName}},</p>
      <p>You have used {{.Percent}}% of your monthly budget for {{.Month}}.</p>
      <table style="width: 100%; margin-top: 16px;">
        <tr><td>Budget Amount</td><td style="text-align: right;">${{.Budget}}</td></tr>
        <tr><td>Spent So Far</td><td style="text-align: right;">${{.Spent}}</td></tr>
        <tr><td>Remaining</td><td style="text-align: right;">${{.Remaining}}</td></tr>
      </table>
    </div>
  </body>
</html>`))

type budgetAlertView struct {
	UserName  string
	Month     string
	Percent   string
	Budget    string
	Spent     string
	Remaining string
}

type Notifier struct {
	sender  Sender
	metrics metrics.Collector
	log     zerolog.Logger
	printer *message.Printer
}

func NewNotifier(sender Sender, m metrics.Collector, log zerolog.Logger) *Notifier {
	if m == nil {
		m = metrics.NoOpCollector{}
	}
	return &Notifier{
		sender:  sender,
		metrics: m,
		log:     log,
		printer: message.NewPrinter(language.English),
	}
}

func (n *Notifier) SendBudgetAlert(ctx context.Context, to string, alert models.BudgetAlert) {
	if to == "" {
		n.log.Warn().Msg("budget alert skipped: recipient has no email")
		return
	}
	html, err := n.renderBudgetAlert(alert)
	if err != nil {
		n.log.Error().Err(err).Msg("failed to render budget alert")
		return
	}

	err = n.sender.Send(ctx, Email{
		To:      []string{to},
		Subject: "Budget Alert for " + alert.Month,
		HTML:    html,
	})
	n.metrics.RecordEmail(err == nil)
	if err != nil {
		n.log.Error().Err(err).Str("to", to).Msg("failed to send budget alert")
		return
	}
	n.log.Info().Str("to", to).Msg("budget alert sent")
}

func (n *Notifier) renderBudgetAlert(alert models.BudgetAlert) (string, error) {
	name := alert.UserName
	if name == "" {
		name = "there"
	}
	budget, _ := alert.Budget.Float64()
	spent, _ := alert.Spent.Float64()
	remaining, _ := alert.Budget.Sub(alert.Spent).Float64()

	var buf bytes.Buffer
	err := budgetAlertTmpl.Execute(&buf, budgetAlertView{
		UserName:  name,
		Month:     alert.Month,
		Percent:   n.printer.Sprintf("%.1f", alert.PercentUsed),
		Budget:    n.printer.Sprintf("%.2f", budget),
		Spent:     n.printer.Sprintf("%.2f", spent),
		Remaining: n.printer.Sprintf("%.2f", remaining),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
