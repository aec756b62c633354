package coins

import (
	"context"

	"levelbot/bot/common"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the currency commands
type Feature struct {
	ledger   interfaces.LedgerService
	settings interfaces.GuildSettingsService
}

// New creates a new coins feature instance
func New(ledger interfaces.LedgerService, settings interfaces.GuildSettingsService) *Feature {
	return &Feature{
		ledger:   ledger,
		settings: settings,
	}
}

// HandleCommand routes the currency commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var err error
	switch name := i.ApplicationCommandData().Name; name {
	case "claim":
		err = f.handleClaim(s, i)
	case "balance":
		err = f.handleBalance(s, i)
	case "transfer":
		err = f.handleTransfer(s, i)
	case "coins-give":
		err = f.handleGive(s, i)
	case "coins-take":
		err = f.handleTake(s, i)
	case "coins-top":
		err = f.handleTop(s, i)
	case "claim-config":
		err = f.handleClaimConfig(s, i)
	case "currency-symbol":
		err = f.handleCurrencySymbol(s, i)
	default:
		log.Warnf("Unknown coins command: %s", name)
		return
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}

// symbol returns the guild's currency symbol, or the default if settings
// cannot be read
func (f *Feature) symbol(ctx context.Context, guildID int64) string {
	settings, err := f.settings.GetSettings(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Warn("Failed to read guild settings, using default symbol")
		return entities.DefaultCurrencySymbol
	}
	return settings.Symbol()
}
