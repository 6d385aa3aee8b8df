package notifier

import (
	"fmt"
	"strings"

	"OptionPulse/internal/access"
	"OptionPulse/internal/model"
	"OptionPulse/internal/store"
)

// FormatSignalMessage renders a signal view as a Telegram HTML message.
func FormatSignalMessage(view access.SignalView) string {
	var b strings.Builder

	switch view.Status {
	case model.StatusActive:
		b.WriteString("🎯 <b>NEW TRADING SIGNAL</b>\n\n")
	case model.StatusTargetHit:
		b.WriteString("✅ <b>TARGET HIT</b>\n\n")
	case model.StatusStopHit:
		b.WriteString("🛑 <b>STOP LOSS HIT</b>\n\n")
	case model.StatusExpired:
		b.WriteString("⌛ <b>SIGNAL EXPIRED</b> (session end)\n\n")
	case model.StatusCancelled:
		b.WriteString("❌ <b>SIGNAL CANCELLED</b>\n\n")
	}

	arrow := "📈"
	if view.Direction == model.Bearish {
		arrow = "📉"
	}
	if view.Redacted {
		b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", arrow, view.Instrument))
		b.WriteString(fmt.Sprintf("▶️ Direction: %s\n\n", view.Direction))
		b.WriteString(view.Placeholder + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%s <b>%s</b> (%s)\n", arrow, view.Instrument, view.OptionSymbol))
	b.WriteString(fmt.Sprintf("▶️ Direction: %s\n", view.Direction))
	b.WriteString(fmt.Sprintf("💰 Entry: %.2f\n", view.EntryPrice))
	b.WriteString(fmt.Sprintf("🎯 Target: %.2f\n", view.TargetPrice))
	b.WriteString(fmt.Sprintf("🛑 Stop Loss: %.2f\n", view.StopLoss))
	b.WriteString(fmt.Sprintf("⚖️ Risk/Reward: 1:%.2f\n", view.RiskReward))
	b.WriteString(fmt.Sprintf("🎲 Confidence: %.0f%%\n", view.Confidence))
	if view.Leg != nil {
		b.WriteString(fmt.Sprintf("📦 Lot Size: %d | Expiry: %s\n", view.Leg.LotSize, view.Leg.Expiry))
	}
	if view.Setup != "" {
		b.WriteString(fmt.Sprintf("\n💡 Setup: %s\n", view.Setup))
	}
	if view.Status.Terminal() && view.Status != model.StatusCancelled {
		b.WriteString(fmt.Sprintf("\n📊 Realized P&L: %+.2f%%\n", view.RealizedPnLPct))
	}
	b.WriteString(fmt.Sprintf("\n⏰ %s\n", view.CreatedAt.Format("02-Jan-2006 15:04:05")))
	return b.String()
}

// FormatDailySummary renders the end-of-day performance report.
func FormatDailySummary(stats store.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>Daily Summary</b> | %s\n\n", stats.Day))
	b.WriteString(fmt.Sprintf("Signals closed: %d\n", stats.Total))
	b.WriteString(fmt.Sprintf("Wins: %d | Losses: %d\n", stats.Wins, stats.Losses))
	if stats.Total > 0 {
		b.WriteString(fmt.Sprintf("Win rate: %.0f%%\n", float64(stats.Wins)/float64(stats.Total)*100))
	}
	b.WriteString(fmt.Sprintf("Net P&L: %+.2f%%\n", stats.TotalPnLPct))
	return b.String()
}
