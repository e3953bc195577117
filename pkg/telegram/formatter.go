package telegram

import (
	"fmt"
	"time"
)

// FormatTriggerAlert formats a breach notice as a Markdown Telegram message.
func FormatTriggerAlert(symbol string, price, threshold float64, when time.Time) string {
	return fmt.Sprintf(
		"🔔 *%s* closed at *%.2f*, below the exit threshold *%.2f*\n🗓 %s\n\nThis alert fires once per position.",
		symbol, price, threshold, when.Format("Mon, 02 Jan 2006"),
	)
}
