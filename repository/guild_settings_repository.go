package repository

import (
	"context"
	"errors"
	"fmt"

	"levelbot/database"
	"levelbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// NewGuildSettingsRepositoryWithTx creates a guild settings repository bound to a transaction
func NewGuildSettingsRepositoryWithTx(tx Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetGuildSettings returns the stored settings, or a row of nils (meaning
// defaults) when the guild never changed anything.
func (r *GuildSettingsRepository) GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	query := `
		SELECT guild_id, activity_cooldown_seconds, level_up_channel_id,
		       claim_reward, claim_cooldown_seconds, currency_symbol
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings entities.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.ActivityCooldownSeconds,
		&settings.LevelUpChannelID,
		&settings.ClaimReward,
		&settings.ClaimCooldownSeconds,
		&settings.CurrencySymbol,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &entities.GuildSettings{GuildID: guildID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpsertGuildSettings writes every column of settings
func (r *GuildSettingsRepository) UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		INSERT INTO guild_settings (guild_id, activity_cooldown_seconds, level_up_channel_id,
		                            claim_reward, claim_cooldown_seconds, currency_symbol)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guild_id) DO UPDATE SET
			activity_cooldown_seconds = EXCLUDED.activity_cooldown_seconds,
			level_up_channel_id = EXCLUDED.level_up_channel_id,
			claim_reward = EXCLUDED.claim_reward,
			claim_cooldown_seconds = EXCLUDED.claim_cooldown_seconds,
			currency_symbol = EXCLUDED.currency_symbol,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.ActivityCooldownSeconds,
		settings.LevelUpChannelID,
		settings.ClaimReward,
		settings.ClaimCooldownSeconds,
		settings.CurrencySymbol,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert guild settings for guild %d: %w", settings.GuildID, err)
	}

	return nil
}
