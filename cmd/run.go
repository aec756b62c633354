package cmd

import (
	"context"
	"fmt"
	"time"

	"levelbot/bot"
	"levelbot/config"
	"levelbot/database"
	"levelbot/domain/interfaces"
	"levelbot/domain/services"
	"levelbot/events"
	"levelbot/infrastructure"
	"levelbot/infrastructure/adjustments"
	"levelbot/infrastructure/observability"
	"levelbot/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	setupLogging(cfg)
	log.Info("Starting levelbot...")

	// Initialize database connection and schema
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Subscribe(eventBus)

	// Initialize event publishing
	natsClient, err := setupEventPublishing(ctx, cfg, eventBus, metrics)
	if err != nil {
		return err
	}

	// Initialize adjustment store
	adjustmentStore, err := adjustments.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open adjustment store: %w", err)
	}
	log.WithField("backend", cfg.AdjustmentStore).Info("Adjustment store ready")

	// Initialize Discord session; the role directory needs it before the services
	session, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Initialize services
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	settingsService := services.NewGuildSettingsService(repository.NewGuildSettingsRepository(db))
	activityService := services.NewActivityService(uowFactory, adjustmentStore, settingsService)
	levelService := services.NewLevelService(activityService, bot.NewDiscordDirectory(session), eventBus)
	ledgerService := services.NewLedgerService(uowFactory, settingsService)
	blackjackService := services.NewBlackjackService(ledgerService, eventBus, nil)
	diceService := services.NewDiceService(ledgerService, eventBus, nil, cfg.DiceReplyTimeout)

	if err := metrics.RegisterActiveWagers(blackjackService.ActiveSessions, diceService.Pending); err != nil {
		log.WithError(err).Warn("Failed to register active wager gauge")
	}

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(session, bot.Config{
		BlackjackIdleTimeout: cfg.BlackjackIdleTimeout,
		DiceReplyTimeout:     cfg.DiceReplyTimeout,
	}, bot.Services{
		Settings:  settingsService,
		Activity:  activityService,
		Levels:    levelService,
		Ledger:    ledgerService,
		Blackjack: blackjackService,
		Dice:      diceService,
	}, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Pending dice stakes go back to their owners
	diceService.Shutdown(shutdownCtx)

	// Hands still in play are stood so the stake is settled
	for _, hand := range blackjackService.ExpireIdle(shutdownCtx, 0) {
		log.WithFields(log.Fields{
			"guild_id": hand.GuildID,
			"user_id":  hand.DiscordID,
			"outcome":  hand.Outcome.String(),
		}).Info("Blackjack hand settled on shutdown")
	}

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// setupEventPublishing forwards published domain events to NATS JetStream.
// Returns a nil client when NATS_SERVERS is empty.
func setupEventPublishing(ctx context.Context, cfg *config.Config, bus *events.Bus, metrics *observability.MetricsProvider) (*infrastructure.NATSClient, error) {
	mapper := infrastructure.NewEventSubjectMapper()

	if cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, domain events stay in process")
		var publisher interfaces.EventPublisher = infrastructure.NewNoopEventPublisher()
		infrastructure.ForwardEvents(bus, publisher, mapper.PublishedEventTypes()...)
		return nil, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if err := infrastructure.EnsureEventStream(client, mapper); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ensure event stream: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(client, mapper, metrics.RecordNATSMessagePublished)
	infrastructure.ForwardEvents(bus, publisher, mapper.PublishedEventTypes()...)
	log.WithField("servers", cfg.NATSServers).Info("Publishing domain events to NATS")

	return client, nil
}
