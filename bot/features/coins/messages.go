package coins

import (
	"fmt"
	"strings"

	"levelbot/bot/common"
	"levelbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

func formatClaim(symbol string, result *entities.ClaimResult) string {
	if !result.Rewarded {
		return fmt.Sprintf("You already claimed. Come back in **%s**.", common.FormatCountdown(result.Remaining))
	}
	return fmt.Sprintf("✅ Claimed **%s**! New balance: **%s**.",
		common.FormatAmount(symbol, result.Reward), common.FormatAmount(symbol, result.NewBalance))
}

func formatTransfer(symbol, recipient string, result *entities.TransferResult) string {
	return fmt.Sprintf("✅ Transferred **%s** to **%s**.\nYour new balance: **%s**. %s's new balance: **%s**.",
		common.FormatAmount(symbol, result.Amount), recipient,
		common.FormatAmount(symbol, result.FromBalance),
		recipient, common.FormatAmount(symbol, result.ToBalance))
}

func formatTransferShortfall(symbol string, balance int64) string {
	return fmt.Sprintf("You don’t have enough coins. Your balance is **%s**.", common.FormatAmount(symbol, balance))
}

func formatTake(symbol, name string, requested, taken, newBalance int64) string {
	note := ""
	if taken < requested {
		note = fmt.Sprintf(" (requested %s, but user only had %s)",
			common.FormatAmount(symbol, requested), common.FormatAmount(symbol, taken))
	}
	return fmt.Sprintf("✅ Took **%s** from **%s**%s. New balance: **%s**.",
		common.FormatAmount(symbol, taken), name, note, common.FormatAmount(symbol, newBalance))
}

type leaderboardRow struct {
	name    string
	balance int64
}

func buildLeaderboardEmbed(symbol string, rows []leaderboardRow) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(rows))
	for idx, row := range rows {
		lines = append(lines, fmt.Sprintf("%s  %s · **%s**", common.RankTag(idx+1), row.name, common.FormatAmount(symbol, row.balance)))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 Top %d Coin Holders", len(rows)),
		Description: strings.Join(lines, "\n"),
		Color:       common.ColorGold,
	}
}
