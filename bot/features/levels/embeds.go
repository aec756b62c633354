package levels

import (
	"fmt"
	"strings"

	"levelbot/bot/common"
	"levelbot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// nextLine describes the next tier or the top-tier line
func nextLine(status *entities.LevelStatus) string {
	if status.Next == nil {
		return fmt.Sprintf("You’ve reached **%s**! 🔥", entities.MaxTier().Name)
	}
	return fmt.Sprintf("Next: **%s** at `%d` messages.", status.Next.Name, status.Next.Threshold)
}

// buildLevelUpEmbed announces that memberID reached a new tier
func buildLevelUpEmbed(memberID int64, status *entities.LevelStatus) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎉 Level Up!",
		Description: fmt.Sprintf("%s just reached **%s**!\n\n**Messages:** `%d`\n%s",
			common.GetUserMention(memberID), status.Tier.Name, status.Activity.Total(), nextLine(status)),
		Color: common.ColorSuccess,
	}
}

// levelUpFallback is sent when the embed cannot be posted
func levelUpFallback(memberID int64, status *entities.LevelStatus) string {
	return fmt.Sprintf("🎉 %s reached **%s**! (%d messages)",
		common.GetUserMention(memberID), status.Tier.Name, status.Activity.Total())
}

// formatLevelCheck is the reply to the level command
func formatLevelCheck(owner string, status *entities.LevelStatus) string {
	a := status.Activity
	return fmt.Sprintf("%s **message count**: `%d`  (adjusted: `%d`, live: `%d`)\n%s **level**: **%s** (≥ %d)\n%s",
		owner, a.Total(), a.Adjusted, a.Live,
		owner, status.Tier.Name, status.Tier.Threshold,
		status.Privilege.Message)
}

// formatBreakdown is the reply to level-info
func formatBreakdown(name string, activity entities.MemberActivity, tier entities.LevelTier) string {
	return fmt.Sprintf("%s's counts → total: `%d`, adjusted: `%d`, live: `%d`\nCurrent level: **%s** (≥ %d)",
		name, activity.Total(), activity.Adjusted, activity.Live, tier.Name, tier.Threshold)
}

// formatSet is the reply to level-set
func formatSet(name string, target int64, stored entities.MemberActivity, status *entities.LevelStatus) string {
	now := status.Activity
	return fmt.Sprintf("Set **%s** total to `%d` → stored adjusted: `%d` (live: `%d`)\n"+
		"Current totals → total: `%d`, adjusted: `%d`, live: `%d`\n"+
		"Level: **%s** (≥ %d)\n%s",
		name, target, stored.Adjusted, stored.Live,
		now.Total(), now.Adjusted, now.Live,
		status.Tier.Name, status.Tier.Threshold, status.Privilege.Message)
}

type leaderboardRow struct {
	name  string
	total int64
	tier  string
}

func buildLeaderboardEmbed(rows []leaderboardRow) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(rows))
	for idx, row := range rows {
		lines = append(lines, fmt.Sprintf("%s  %s · **%d** msgs  |  %s", common.RankTag(idx+1), row.name, row.total, row.tier))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 Top %d Message Counts", len(rows)),
		Description: strings.Join(lines, "\n"),
		Color:       common.ColorPrimary,
	}
}
