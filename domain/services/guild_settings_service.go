package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"

	lru "github.com/hashicorp/golang-lru"
)

const settingsCacheSize = 1024

// guildSettingsService implements the GuildSettingsService interface. Reads
// are served from an LRU filled on first touch; every write goes through the
// same service and refreshes the cached row.
type guildSettingsService struct {
	guildSettingsRepo interfaces.GuildSettingsRepository
	cache             *lru.Cache

	// serializes read-modify-write per process
	writeMu sync.Mutex
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo interfaces.GuildSettingsRepository) interfaces.GuildSettingsService {
	cache, _ := lru.New(settingsCacheSize)
	return &guildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
		cache:             cache,
	}
}

// GetSettings returns a copy of the guild's settings
func (s *guildSettingsService) GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	if cached, ok := s.cache.Get(guildID); ok {
		return cached.(*entities.GuildSettings).Clone(), nil
	}

	settings, err := s.guildSettingsRepo.GetGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	s.cache.Add(guildID, settings.Clone())
	return settings, nil
}

// update applies mutate to the current row, persists it and refreshes the cache
func (s *guildSettingsService) update(ctx context.Context, guildID int64, mutate func(*entities.GuildSettings)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.guildSettingsRepo.GetGuildSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	// the row read stays untouched if the write fails
	updated := current.Clone()
	mutate(updated)

	if err := s.guildSettingsRepo.UpsertGuildSettings(ctx, updated); err != nil {
		s.cache.Remove(guildID)
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	s.cache.Add(guildID, updated.Clone())
	return nil
}

// SetActivityCooldown sets the message debounce window
func (s *guildSettingsService) SetActivityCooldown(ctx context.Context, guildID int64, seconds int) error {
	if seconds < 0 {
		return domain.NewValidationError("Cooldown must be 0 or more seconds.")
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) {
		settings.ActivityCooldownSeconds = &seconds
	})
}

// SetLevelUpChannel sets the level-up announce channel. nil clears it.
func (s *guildSettingsService) SetLevelUpChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) {
		settings.LevelUpChannelID = channelID
	})
}

// SetClaimReward sets the coins granted per claim
func (s *guildSettingsService) SetClaimReward(ctx context.Context, guildID int64, reward int64) error {
	if reward < 0 {
		return domain.NewValidationError("Reward must be 0 or more.")
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) {
		settings.ClaimReward = &reward
	})
}

// SetClaimCooldown sets the seconds between claims
func (s *guildSettingsService) SetClaimCooldown(ctx context.Context, guildID int64, seconds int64) error {
	if seconds < 0 {
		return domain.NewValidationError("Cooldown must be 0 or more seconds.")
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) {
		settings.ClaimCooldownSeconds = &seconds
	})
}

// SetCurrencySymbol sets the prefix rendered before every amount
func (s *guildSettingsService) SetCurrencySymbol(ctx context.Context, guildID int64, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return domain.NewValidationError("Symbol cannot be empty.")
	}
	if utf8.RuneCountInString(symbol) > entities.MaxCurrencySymbolLength {
		return domain.NewValidationError("Symbol must be at most %d characters.", entities.MaxCurrencySymbolLength)
	}
	return s.update(ctx, guildID, func(settings *entities.GuildSettings) {
		settings.CurrencySymbol = &symbol
	})
}
