package mailer

import (
	"fmt"
	"strings"
	"time"
)

// TriggerAlert carries everything a breach email needs.
type TriggerAlert struct {
	Symbol      string
	CompanyName string
	Price       float64
	Threshold   float64
	When        time.Time
}

// SummaryRow is one position in the aggregate summary email.
type SummaryRow struct {
	Symbol       string
	CompanyName  string
	CurrentPrice float64
	Threshold    float64
	DistancePct  float64
	Triggered    bool
}

// FormatTriggerAlert renders the one-shot breach notification.
func FormatTriggerAlert(a TriggerAlert) (subject, html string) {
	subject = fmt.Sprintf("Exit alert: %s closed at %.2f, below your threshold %.2f", a.Symbol, a.Price, a.Threshold)

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h2>%s (%s) hit its exit threshold</h2>", a.Symbol, a.CompanyName))
	b.WriteString(fmt.Sprintf("<p>Close: <b>%.2f</b><br>Threshold: <b>%.2f</b><br>Date: %s</p>",
		a.Price, a.Threshold, a.When.Format("Mon, 02 Jan 2006")))
	b.WriteString("<p>This alert fires once per position and will not repeat.</p>")
	b.WriteString("</body></html>")

	return subject, b.String()
}

// FormatSummary renders the aggregate distance-to-threshold table for all
// tracked positions.
func FormatSummary(rows []SummaryRow, asOf time.Time) (subject, html string) {
	subject = fmt.Sprintf("Position summary for %s", asOf.Format("Mon, 02 Jan 2006"))

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>Tracked positions</h2>")
	b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Symbol</th><th>Price</th><th>Threshold</th><th>Distance</th><th>Status</th></tr>")
	for _, r := range rows {
		status := "holding"
		if r.Triggered {
			status = "triggered"
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%.2f</td><td>%.2f</td><td>%.1f%%</td><td>%s</td></tr>",
			r.Symbol, r.CurrentPrice, r.Threshold, r.DistancePct, status))
	}
	b.WriteString("</table>")
	b.WriteString("</body></html>")

	return subject, b.String()
}
