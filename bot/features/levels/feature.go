package levels

import (
	"levelbot/bot/common"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature handles the level commands and level-up announcements
type Feature struct {
	session  *discordgo.Session
	activity interfaces.ActivityService
	levels   interfaces.LevelService
	settings interfaces.GuildSettingsService
}

// NewFeature creates a new levels feature instance
func NewFeature(
	session *discordgo.Session,
	activity interfaces.ActivityService,
	levels interfaces.LevelService,
	settings interfaces.GuildSettingsService,
) *Feature {
	return &Feature{
		session:  session,
		activity: activity,
		levels:   levels,
		settings: settings,
	}
}

// HandleCommand routes the level commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var err error
	switch name := i.ApplicationCommandData().Name; name {
	case "level":
		err = f.handleLevel(s, i)
	case "level-info":
		err = f.handleLevelInfo(s, i)
	case "level-cooldown":
		err = f.handleCooldown(s, i)
	case "level-set":
		err = f.handleSet(s, i)
	case "level-channel":
		err = f.handleChannel(s, i)
	case "level-top":
		err = f.handleTop(s, i)
	case "level-sync":
		f.handleSync(s, i)
		return
	default:
		log.Warnf("Unknown levels command: %s", name)
		return
	}

	if err != nil {
		common.HandleError(s, i, err, false)
	}
}
