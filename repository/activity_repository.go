package repository

import (
	"context"
	"errors"
	"fmt"

	"levelbot/database"
	"levelbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ActivityRepository implements the ActivityRepository interface
type ActivityRepository struct {
	q       Queryable
	guildID int64
}

// NewActivityRepository creates a pool-backed repository scoped to guildID
func NewActivityRepository(db *database.DB, guildID int64) *ActivityRepository {
	return &ActivityRepository{q: db.Pool, guildID: guildID}
}

// NewActivityRepositoryScoped creates a repository bound to a transaction and guild
func NewActivityRepositoryScoped(tx Queryable, guildID int64) *ActivityRepository {
	return &ActivityRepository{q: tx, guildID: guildID}
}

// Increment bumps the live count in one upsert so concurrent messages never
// lose an update.
func (r *ActivityRepository) Increment(ctx context.Context, discordID int64) (int64, error) {
	query := `
		INSERT INTO member_activity (guild_id, discord_id, message_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (guild_id, discord_id)
		DO UPDATE SET message_count = member_activity.message_count + 1, updated_at = NOW()
		RETURNING message_count
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, r.guildID, discordID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment activity for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return count, nil
}

// GetCount returns the live count, 0 when the member was never counted
func (r *ActivityRepository) GetCount(ctx context.Context, discordID int64) (int64, error) {
	query := `SELECT message_count FROM member_activity WHERE guild_id = $1 AND discord_id = $2`

	var count int64
	err := r.q.QueryRow(ctx, query, r.guildID, discordID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get activity for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return count, nil
}

// ListCounts returns every counted member in the guild
func (r *ActivityRepository) ListCounts(ctx context.Context) ([]*entities.MemberActivity, error) {
	query := `
		SELECT discord_id, message_count
		FROM member_activity
		WHERE guild_id = $1
		ORDER BY message_count DESC, discord_id ASC
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity in guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var counts []*entities.MemberActivity
	for rows.Next() {
		activity := &entities.MemberActivity{GuildID: r.guildID}
		if err := rows.Scan(&activity.DiscordID, &activity.Live); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		counts = append(counts, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return counts, nil
}
