package dice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"levelbot/bot/common"
	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the dice command. Replies are routed by the bot's message
// handler straight to the dice service.
type Feature struct {
	dice         interfaces.DiceService
	levels       interfaces.LevelService
	settings     interfaces.GuildSettingsService
	replyTimeout time.Duration
}

// New creates a new dice feature instance
func New(dice interfaces.DiceService, levels interfaces.LevelService, settings interfaces.GuildSettingsService, replyTimeout time.Duration) *Feature {
	return &Feature{
		dice:         dice,
		levels:       levels,
		settings:     settings,
		replyTimeout: replyTimeout,
	}
}

// HandleCommand handles /dice
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handlePlace(s, i); err != nil {
		common.HandleError(s, i, err, false)
	}
}

func (f *Feature) handlePlace(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	ok, activity, err := f.levels.MeetsTier(ctx, inv.GuildID, inv.UserID, entities.GameTier())
	if err != nil {
		return common.Classify(err, "failed to check game tier")
	}
	if !ok {
		return common.NewUserError(
			fmt.Sprintf("You must be **%s** to play games. You’re **%s** with `%d` messages.",
				entities.GameTier().Name, f.levels.Resolve(activity.Total()).Name, activity.Total()),
			"dice below required tier")
	}

	symbol := f.symbol(ctx, inv.GuildID)
	bet, _ := common.CommandOptions(i).Int("bet")

	err = f.dice.Place(ctx, inv.GuildID, inv.UserID, inv.ChannelID, bet, func(result *entities.DiceResult) {
		f.sendResult(s, i, formatResult(symbol, result))
	})
	var shortfall *domain.InsufficientBalanceError
	if errors.As(err, &shortfall) {
		return common.NewUserError(
			fmt.Sprintf("Insufficient funds. Your balance is %s.", common.FormatAmount(symbol, shortfall.Balance)),
			"dice bet exceeds balance")
	}
	if err != nil {
		return common.Classify(err, "failed to place dice wager")
	}

	if err := common.RespondWithMessage(s, i, formatPrompt(symbol, bet, f.replyTimeout), false); err != nil {
		log.Errorf("Error responding to dice command: %v", err)
	}
	return nil
}

// sendResult follows up on the dice interaction, falling back to a plain
// channel message if the interaction can no longer be followed up
func (f *Feature) sendResult(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := common.FollowUpWithMessage(s, i, content)
	if err == nil {
		return
	}
	log.WithError(err).Debug("Dice follow-up failed, posting to channel")

	content = fmt.Sprintf("<@%s> %s", common.InteractionUserID(i), content)
	if _, err := s.ChannelMessageSend(i.ChannelID, content); err != nil {
		log.WithError(err).WithField("channel_id", i.ChannelID).Error("Failed to post dice result")
	}
}

func (f *Feature) symbol(ctx context.Context, guildID int64) string {
	settings, err := f.settings.GetSettings(ctx, guildID)
	if err != nil {
		return entities.DefaultCurrencySymbol
	}
	return settings.Symbol()
}
