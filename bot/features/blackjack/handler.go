package blackjack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"levelbot/bot/common"
	"levelbot/domain"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	bet, _ := common.CommandOptions(i).Int("bet")
	if bet <= 0 {
		return common.NewUserError("Bet must be a positive integer.", "blackjack with a non-positive bet")
	}
	if err := f.checkLevelGate(ctx, inv.GuildID, inv.UserID); err != nil {
		return err
	}

	symbol := f.symbol(ctx, inv.GuildID)
	hand, err := f.blackjack.Start(ctx, inv.GuildID, inv.UserID, bet)
	var shortfall *domain.InsufficientBalanceError
	if errors.As(err, &shortfall) {
		return common.NewUserError(
			fmt.Sprintf("Insufficient funds. Your balance is %s.", common.FormatAmount(symbol, shortfall.Balance)),
			"blackjack bet exceeds balance")
	}
	if err != nil {
		return common.Classify(err, "failed to start blackjack")
	}

	return common.RespondWithEmbed(s, i, buildHandEmbed(symbol, hand), buildButtons(inv.UserID, hand), false)
}

func (f *Feature) handleActionCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	value, _ := common.CommandOptions(i).String("action")
	a, ok := parseAction(value)
	if !ok {
		return common.NewUserError("Pick hit, stand, double or surrender.", "unknown blackjack action")
	}

	hand, err := f.apply(ctx, a, inv.GuildID, inv.UserID)
	if err != nil {
		return common.Classify(err, "blackjack action failed")
	}

	symbol := f.symbol(ctx, inv.GuildID)
	return common.RespondWithEmbed(s, i, buildHandEmbed(symbol, hand), buildButtons(inv.UserID, hand), false)
}

// handleButton applies a button press to the hand it was posted with and
// edits that message in place
func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	a, ownerID, err := parseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return common.NewSystemError(err, "malformed blackjack button")
	}
	if ownerID != inv.UserID {
		return common.NewUserError("This isn't your hand. Start your own with `/blackjack`.", "blackjack button pressed by another member")
	}

	hand, err := f.apply(ctx, a, inv.GuildID, inv.UserID)
	if err != nil {
		return common.Classify(err, "blackjack action failed")
	}

	symbol := f.symbol(ctx, inv.GuildID)
	if err := common.UpdateWithEmbed(s, i, buildHandEmbed(symbol, hand), buildButtons(inv.UserID, hand)); err != nil {
		log.Errorf("Error updating blackjack message: %v", err)
	}
	return nil
}

func customID(a action, ownerID int64) string {
	return fmt.Sprintf("%s%s_%d", CustomIDPrefix, a, ownerID)
}

func parseCustomID(id string) (action, int64, error) {
	parts := strings.Split(strings.TrimPrefix(id, CustomIDPrefix), "_")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("unexpected blackjack custom id %q", id)
	}
	a, ok := parseAction(parts[0])
	if !ok {
		return "", 0, fmt.Errorf("unknown blackjack action in %q", id)
	}
	ownerID, err := common.ParseUserID(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("bad owner in blackjack custom id %q: %w", id, err)
	}
	return a, ownerID, nil
}
