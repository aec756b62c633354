package blackjack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"levelbot/bot/common"
	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// CustomIDPrefix marks blackjack buttons
const CustomIDPrefix = "blackjack_"

// Feature handles the blackjack command and its buttons
type Feature struct {
	blackjack interfaces.BlackjackService
	levels    interfaces.LevelService
	settings  interfaces.GuildSettingsService
}

// New creates a new blackjack feature instance
func New(blackjack interfaces.BlackjackService, levels interfaces.LevelService, settings interfaces.GuildSettingsService) *Feature {
	return &Feature{
		blackjack: blackjack,
		levels:    levels,
		settings:  settings,
	}
}

// HandleCommand handles /blackjack and /blackjack-action
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var err error
	switch name := i.ApplicationCommandData().Name; name {
	case "blackjack":
		err = f.handleStart(s, i)
	case "blackjack-action":
		err = f.handleActionCommand(s, i)
	default:
		log.Warnf("Unknown blackjack command: %s", name)
		return
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

// HandleInteraction handles the Hit/Stand/Double/Surrender buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handleButton(s, i); err != nil {
		common.HandleError(s, i, err, false)
	}
}

// symbol returns the guild's currency symbol, or the default if settings
// cannot be read
func (f *Feature) symbol(ctx context.Context, guildID int64) string {
	settings, err := f.settings.GetSettings(ctx, guildID)
	if err != nil {
		return entities.DefaultCurrencySymbol
	}
	return settings.Symbol()
}

// checkLevelGate rejects members below the game tier
func (f *Feature) checkLevelGate(ctx context.Context, guildID, discordID int64) error {
	ok, activity, err := f.levels.MeetsTier(ctx, guildID, discordID, entities.GameTier())
	if err != nil {
		return common.Classify(err, "failed to check game tier")
	}
	if ok {
		return nil
	}
	current := f.levels.Resolve(activity.Total())
	return common.NewUserError(
		fmt.Sprintf("You must be **%s** to play games. You’re **%s** with `%d` messages. Keep chatting!",
			entities.GameTier().Name, current.Name, activity.Total()),
		"game below required tier")
}

// action is one blackjack move
type action string

const (
	actionHit       action = "hit"
	actionStand     action = "stand"
	actionDouble    action = "double"
	actionSurrender action = "surrender"
)

var actions = []action{actionHit, actionStand, actionDouble, actionSurrender}

func parseAction(value string) (action, bool) {
	for _, a := range actions {
		if string(a) == strings.ToLower(value) {
			return a, true
		}
	}
	return "", false
}

// apply runs a on the member's hand
func (f *Feature) apply(ctx context.Context, a action, guildID, discordID int64) (*entities.BlackjackHand, error) {
	switch a {
	case actionHit:
		return f.blackjack.Hit(ctx, guildID, discordID)
	case actionStand:
		return f.blackjack.Stand(ctx, guildID, discordID)
	case actionDouble:
		hand, err := f.blackjack.Double(ctx, guildID, discordID)
		var shortfall *domain.InsufficientBalanceError
		if errors.As(err, &shortfall) {
			return nil, common.NewUserError(
				fmt.Sprintf("You need %s available to double down.", common.FormatAmount(f.symbol(ctx, guildID), shortfall.Needed)),
				"double without funds")
		}
		return hand, err
	case actionSurrender:
		return f.blackjack.Surrender(ctx, guildID, discordID)
	default:
		return nil, fmt.Errorf("unknown blackjack action %q", a)
	}
}
