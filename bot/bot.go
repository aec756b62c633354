package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"levelbot/bot/common"
	"levelbot/bot/features/blackjack"
	"levelbot/bot/features/coins"
	"levelbot/bot/features/dice"
	"levelbot/bot/features/levels"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	BlackjackIdleTimeout time.Duration
	DiceReplyTimeout     time.Duration
}

// Services are the domain services the features call
type Services struct {
	Settings  interfaces.GuildSettingsService
	Activity  interfaces.ActivityService
	Levels    interfaces.LevelService
	Ledger    interfaces.LedgerService
	Blackjack interfaces.BlackjackService
	Dice      interfaces.DiceService
}

// CommandRecorder counts handled slash commands
type CommandRecorder interface {
	RecordCommand(command string)
}

type commandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Bot manages the Discord bot and all feature modules
type Bot struct {
	config   Config
	session  *discordgo.Session
	services Services
	recorder CommandRecorder

	// Feature modules
	levels    *levels.Feature
	coins     *coins.Feature
	blackjack *blackjack.Feature
	dice      *dice.Feature

	routes map[string]commandHandler

	stopBlackjackWorker func()
}

// NewSession creates a Discord session with the intents the bot needs. The
// session is not opened until New.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent
	return dg, nil
}

// New wires the features, opens the session and registers commands
func New(session *discordgo.Session, config Config, services Services, recorder CommandRecorder) (*Bot, error) {
	bot := &Bot{
		config:   config,
		session:  session,
		services: services,
		recorder: recorder,
	}

	bot.levels = levels.NewFeature(session, services.Activity, services.Levels, services.Settings)
	bot.coins = coins.New(services.Ledger, services.Settings)
	bot.blackjack = blackjack.New(services.Blackjack, services.Levels, services.Settings)
	bot.dice = dice.New(services.Dice, services.Levels, services.Settings, config.DiceReplyTimeout)
	bot.routes = bot.commandRoutes()

	// Register handlers
	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleGuildCreate)
	session.AddHandler(bot.handleInteractions)
	session.AddHandler(bot.handleMessageCreate)
	session.AddHandler(bot.handleGuildMemberAdd)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start background workers
	bot.stopBlackjackWorker = bot.StartBlackjackIdleWorker(context.Background(), blackjackSweepInterval, config.BlackjackIdleTimeout)
	log.Info("Background workers started")

	return bot, nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	if b.stopBlackjackWorker != nil {
		b.stopBlackjackWorker()
	}
	log.Info("Background workers stopped")

	return b.session.Close()
}

// commandRoutes maps every slash command to the feature that serves it
func (b *Bot) commandRoutes() map[string]commandHandler {
	routes := make(map[string]commandHandler)
	for _, name := range []string{"level", "level-info", "level-cooldown", "level-set", "level-channel", "level-top", "level-sync"} {
		routes[name] = b.levels.HandleCommand
	}
	for _, name := range []string{"claim", "balance", "transfer", "coins-give", "coins-take", "coins-top", "claim-config", "currency-symbol"} {
		routes[name] = b.coins.HandleCommand
	}
	routes["blackjack"] = b.blackjack.HandleCommand
	routes["blackjack-action"] = b.blackjack.HandleCommand
	routes["dice"] = b.dice.HandleCommand
	return routes
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Logged in")
}

// handleGuildCreate warms the settings cache for every guild the bot joins or
// resumes
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseGuildID(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	settings, err := b.services.Settings.GetSettings(context.Background(), guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Error("Failed to load guild settings")
		return
	}

	log.WithFields(log.Fields{
		"guild_id":          guildID,
		"guild_name":        g.Name,
		"activity_cooldown": settings.ActivityCooldown(),
		"currency_symbol":   settings.Symbol(),
	}).Info("Guild available")
}

// handleInteractions routes slash commands and button presses
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := b.routes[name]
		if !ok {
			log.Warnf("Unknown command: %s", name)
			return
		}
		if b.recorder != nil {
			b.recorder.RecordCommand(name)
		}
		handler(s, i)

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if strings.HasPrefix(customID, blackjack.CustomIDPrefix) {
			b.blackjack.HandleInteraction(s, i)
		}
	}
}

// handleMessageCreate hands the message to a waiting dice wager first; any
// message the dice game does not consume is counted as activity
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseGuildID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseUserID(m.Author.ID)
	if err != nil {
		return
	}
	channelID, err := common.ParseID(m.ChannelID)
	if err != nil {
		return
	}

	if b.services.Dice.Deliver(guildID, userID, channelID, m.Content) {
		return
	}

	ctx := context.Background()
	logger := log.WithFields(log.Fields{
		"guild_id":   guildID,
		"user_id":    userID,
		"channel_id": channelID,
	})

	counted, err := b.services.Activity.OnMessage(ctx, guildID, userID, m.Content, time.Now())
	if err != nil {
		logger.WithError(err).Error("Failed to count message")
		return
	}
	if !counted {
		return
	}

	status, err := b.services.Levels.Reconcile(ctx, guildID, userID)
	if err != nil {
		logger.WithError(err).Error("Failed to reconcile level")
		return
	}
	// removing a stale tier role alone is not a level-up
	if status.Privilege.Granted {
		b.levels.AnnounceLevelUp(ctx, guildID, channelID, userID, status)
	}
}

// handleGuildMemberAdd gives new members the floor tier role
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	guildID, err := common.ParseGuildID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseUserID(m.User.ID)
	if err != nil {
		return
	}

	result := b.services.Levels.EnsurePrivilege(context.Background(), guildID, userID, entities.FloorTier().Name)
	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
		"changed":  result.Changed,
		"result":   result.Message,
	}).Info("New member joined")
}
