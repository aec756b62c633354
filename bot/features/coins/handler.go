package coins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"levelbot/bot/common"
	"levelbot/domain"
	"levelbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var errManageRoles = common.NewUserError("You need **Manage Roles** to do that.", "coins admin command without Manage Roles")

func (f *Feature) handleClaim(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	result, err := f.ledger.Claim(ctx, inv.GuildID, inv.UserID, time.Now())
	if err != nil {
		return common.Classify(err, "failed to claim")
	}

	return common.RespondWithMessage(s, i, formatClaim(f.symbol(ctx, inv.GuildID), result), !result.Rewarded)
}

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	targetID, owner := inv.UserID, "Your"
	if user, member, ok := common.CommandOptions(i).User(i, "user"); ok && user.ID != common.InteractionUserID(i) {
		if targetID, err = common.ParseUserID(user.ID); err != nil {
			return common.NewSystemError(err, "failed to parse target user id")
		}
		owner = common.DisplayNameOf(member, user) + "'s"
	}

	balance, err := f.ledger.GetBalance(ctx, inv.GuildID, targetID)
	if err != nil {
		return common.Classify(err, "failed to read balance")
	}

	symbol := f.symbol(ctx, inv.GuildID)
	return common.RespondWithMessage(s, i, fmt.Sprintf("%s balance: **%s**.", owner, common.FormatAmount(symbol, balance)), false)
}

func (f *Feature) handleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	options := common.CommandOptions(i)
	amount, _ := options.Int("amount")
	recipient, member, ok := options.User(i, "user")
	if !ok {
		return common.NewUserError("Pick a member to send coins to.", "transfer without a recipient")
	}
	recipientID, err := common.ParseUserID(recipient.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse recipient id")
	}

	result, err := f.ledger.Transfer(ctx, inv.GuildID, inv.UserID, recipientID, amount, recipient.Bot)
	symbol := f.symbol(ctx, inv.GuildID)
	var shortfall *domain.InsufficientBalanceError
	if errors.As(err, &shortfall) {
		return common.NewUserError(formatTransferShortfall(symbol, shortfall.Balance), "transfer exceeds balance")
	}
	if err != nil {
		return common.Classify(err, "transfer failed")
	}

	return common.RespondWithMessage(s, i, formatTransfer(symbol, common.DisplayNameOf(member, recipient), result), false)
}

func (f *Feature) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return errManageRoles
	}

	options := common.CommandOptions(i)
	amount, _ := options.Int("amount")
	user, member, ok := options.User(i, "user")
	if !ok {
		return common.NewUserError("Pick a member.", "coins-give without a user")
	}
	if amount <= 0 {
		return common.NewUserError("Amount must be a positive integer.", "coins-give with a non-positive amount")
	}
	if user.Bot {
		return common.NewUserError("Bots don’t need money. 😉", "coins-give to a bot")
	}
	targetID, err := common.ParseUserID(user.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse target user id")
	}

	newBalance, err := f.ledger.AdminGrant(ctx, inv.GuildID, targetID, amount)
	if err != nil {
		return common.Classify(err, "coins-give failed")
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"user_id":   inv.UserID,
		"target_id": targetID,
		"amount":    amount,
	}).Info("Admin granted coins")

	symbol := f.symbol(ctx, inv.GuildID)
	return common.RespondWithMessage(s, i, fmt.Sprintf("✅ Gave **%s** to **%s**. New balance: **%s**.",
		common.FormatAmount(symbol, amount), common.DisplayNameOf(member, user), common.FormatAmount(symbol, newBalance)), false)
}

func (f *Feature) handleTake(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return errManageRoles
	}

	options := common.CommandOptions(i)
	amount, _ := options.Int("amount")
	user, member, ok := options.User(i, "user")
	if !ok {
		return common.NewUserError("Pick a member.", "coins-take without a user")
	}
	if amount <= 0 {
		return common.NewUserError("Amount must be a positive integer.", "coins-take with a non-positive amount")
	}
	if user.Bot {
		return common.NewUserError("Bots don’t have balances to deduct.", "coins-take from a bot")
	}
	targetID, err := common.ParseUserID(user.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse target user id")
	}

	newBalance, taken, err := f.ledger.AdminRevoke(ctx, inv.GuildID, targetID, amount)
	if err != nil {
		return common.Classify(err, "coins-take failed")
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"user_id":   inv.UserID,
		"target_id": targetID,
		"requested": amount,
		"taken":     taken,
	}).Info("Admin took coins")

	symbol := f.symbol(ctx, inv.GuildID)
	return common.RespondWithMessage(s, i, formatTake(symbol, common.DisplayNameOf(member, user), amount, taken, newBalance), false)
}

func (f *Feature) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	limit := common.DefaultLeaderboardSize
	if requested, ok := common.CommandOptions(i).Int("limit"); ok {
		limit = services.ClampLeaderboardLimit(int(requested))
	}

	top, err := f.ledger.TopBalances(ctx, inv.GuildID, limit)
	if err != nil {
		return common.Classify(err, "failed to load balance leaderboard")
	}
	if len(top) == 0 {
		return common.RespondWithMessage(s, i, "No coin data yet. Try `/claim` to get started!", false)
	}

	rows := make([]leaderboardRow, 0, len(top))
	for _, account := range top {
		rows = append(rows, leaderboardRow{
			name:    common.GetDisplayNameInt64(s, i.GuildID, account.DiscordID),
			balance: account.Balance,
		})
	}

	return common.RespondWithEmbed(s, i, buildLeaderboardEmbed(f.symbol(ctx, inv.GuildID), rows), nil, false)
}

func (f *Feature) handleClaimConfig(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return errManageRoles
	}

	settings, err := f.settings.GetSettings(ctx, inv.GuildID)
	if err != nil {
		return common.Classify(err, "failed to read guild settings")
	}
	symbol := settings.Symbol()

	options := common.CommandOptions(i)
	reward, setReward := options.Int("reward")
	cooldown, setCooldown := options.Int("cooldown")

	if !setReward && !setCooldown {
		return common.RespondWithMessage(s, i, fmt.Sprintf("Current claim settings → reward: **%s**, cooldown: **%d**s.",
			common.FormatAmount(symbol, settings.Reward()), settings.ClaimCooldown()), false)
	}

	var lines []string
	if setReward {
		if err := f.settings.SetClaimReward(ctx, inv.GuildID, reward); err != nil {
			return common.Classify(err, "failed to set claim reward")
		}
		lines = append(lines, fmt.Sprintf("✅ Claim reward set to **%s** (was %s).",
			common.FormatAmount(symbol, reward), common.FormatAmount(symbol, settings.Reward())))
	}
	if setCooldown {
		if err := f.settings.SetClaimCooldown(ctx, inv.GuildID, cooldown); err != nil {
			return common.Classify(err, "failed to set claim cooldown")
		}
		lines = append(lines, fmt.Sprintf("✅ Claim cooldown set to **%d**s (was %ds).", cooldown, settings.ClaimCooldown()))
	}

	log.WithFields(log.Fields{
		"guild_id": inv.GuildID,
		"user_id":  inv.UserID,
	}).Info("Claim settings changed")

	return common.RespondWithMessage(s, i, strings.Join(lines, "\n"), false)
}

func (f *Feature) handleCurrencySymbol(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return errManageRoles
	}

	symbol, ok := common.CommandOptions(i).String("symbol")
	if !ok {
		current := f.symbol(ctx, inv.GuildID)
		return common.RespondWithMessage(s, i, fmt.Sprintf("Current currency symbol: **%s**  Example: %s", current, common.FormatAmount(current, 300)), false)
	}

	if err := f.settings.SetCurrencySymbol(ctx, inv.GuildID, symbol); err != nil {
		return common.Classify(err, "failed to set currency symbol")
	}

	updated := f.symbol(ctx, inv.GuildID)
	return common.RespondWithMessage(s, i, fmt.Sprintf("✅ Currency symbol updated to **%s**. Example: %s", updated, common.FormatAmount(updated, 300)), false)
}
