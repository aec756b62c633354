package dice

import (
	"fmt"
	"time"

	"levelbot/bot/common"
	"levelbot/domain/entities"
)

func formatPrompt(symbol string, bet int64, timeout time.Duration) string {
	return fmt.Sprintf("🎲 Pick a face **1-6** for your bet of %s. Reply with a number within %d seconds.",
		common.FormatAmount(symbol, bet), int(timeout.Seconds()))
}

// formatResult describes a settled wager
func formatResult(symbol string, result *entities.DiceResult) string {
	if result.Err != nil {
		if result.Outcome.IsRefund() {
			return fmt.Sprintf("⚠️ Your bet of %s could not be refunded. Please ask an admin to check your balance.",
				common.FormatAmount(symbol, result.Bet))
		}
		if result.Payout == 0 {
			// nothing was owed; only the balance lookup failed
			return fmt.Sprintf("❌ No match. Rolled **%d** and **%d**. Better luck next time.", result.Dice[0], result.Dice[1])
		}
		return fmt.Sprintf("⚠️ Rolled **%d** and **%d**, but your winnings of %s could not be credited. Please ask an admin to check your balance.",
			result.Dice[0], result.Dice[1], common.FormatAmount(symbol, result.Payout))
	}

	switch result.Outcome {
	case entities.DiceOutcomeTimedOut:
		return "⏳ Timed out. Bet refunded."
	case entities.DiceOutcomeInvalidReply:
		return "Invalid number. Bet refunded."
	case entities.DiceOutcomeOutOfRange:
		return "Face must be between 1 and 6. Bet refunded."
	case entities.DiceOutcomeCancelled:
		return "Dice game cancelled. Bet refunded."
	}

	d1, d2 := result.Dice[0], result.Dice[1]
	var desc string
	switch result.Matches {
	case 2:
		desc = fmt.Sprintf("🎉 Double match! Rolled **%d** and **%d**. You win **%s**.", d1, d2, common.FormatAmount(symbol, result.Payout))
	case 1:
		desc = fmt.Sprintf("✅ One match! Rolled **%d** and **%d**. You win **%s**.", d1, d2, common.FormatAmount(symbol, result.Payout))
	default:
		desc = fmt.Sprintf("❌ No match. Rolled **%d** and **%d**. Better luck next time.", d1, d2)
	}
	return fmt.Sprintf("%s\nNew balance: **%s**.", desc, common.FormatAmount(symbol, result.NewBalance))
}
