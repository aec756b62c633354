package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"levelbot/database"
	"levelbot/domain"
	"levelbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// BalanceRepository implements the BalanceRepository interface
type BalanceRepository struct {
	q       Queryable
	guildID int64
}

// NewBalanceRepository creates a pool-backed repository scoped to guildID
func NewBalanceRepository(db *database.DB, guildID int64) *BalanceRepository {
	return &BalanceRepository{q: db.Pool, guildID: guildID}
}

// NewBalanceRepositoryScoped creates a repository bound to a transaction and guild
func NewBalanceRepositoryScoped(tx Queryable, guildID int64) *BalanceRepository {
	return &BalanceRepository{q: tx, guildID: guildID}
}

const balanceColumns = `guild_id, discord_id, balance, last_claim_at, created_at, updated_at`

func scanBalance(row pgx.Row) (*entities.GuildBalance, error) {
	var b entities.GuildBalance
	err := row.Scan(&b.GuildID, &b.DiscordID, &b.Balance, &b.LastClaimAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) ensure(ctx context.Context, discordIDs ...int64) error {
	query := `
		INSERT INTO guild_balances (guild_id, discord_id)
		SELECT $1, id FROM unnest($2::bigint[]) AS id
		ON CONFLICT (guild_id, discord_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, r.guildID, discordIDs); err != nil {
		return fmt.Errorf("failed to create balance rows in guild %d: %w", r.guildID, err)
	}
	return nil
}

// GetOrCreate returns the account, inserting a zero balance on first access
func (r *BalanceRepository) GetOrCreate(ctx context.Context, discordID int64) (*entities.GuildBalance, error) {
	query := `
		INSERT INTO guild_balances (guild_id, discord_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, discord_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, r.guildID, discordID))
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return balance, nil
}

// LockForUpdate creates any missing accounts and locks all of them in
// ascending id order, so two transfers between the same pair in opposite
// directions queue instead of deadlocking.
func (r *BalanceRepository) LockForUpdate(ctx context.Context, discordIDs ...int64) (map[int64]*entities.GuildBalance, error) {
	ids := slices.Clone(discordIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if err := r.ensure(ctx, ids...); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + balanceColumns + `
		FROM guild_balances
		WHERE guild_id = $1 AND discord_id = ANY($2)
		ORDER BY discord_id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, r.guildID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balances in guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	locked := make(map[int64]*entities.GuildBalance, len(ids))
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		locked[balance.DiscordID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return locked, nil
}

// AddBalance credits a positive amount in a single upsert
func (r *BalanceRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO guild_balances (guild_id, discord_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, discord_id)
		DO UPDATE SET balance = guild_balances.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var newBalance int64
	if err := r.q.QueryRow(ctx, query, r.guildID, discordID, amount).Scan(&newBalance); err != nil {
		return 0, fmt.Errorf("failed to add balance for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return newBalance, nil
}

// DeductBalance debits amount only when the balance covers it
func (r *BalanceRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE guild_balances
		SET balance = balance - $3, updated_at = NOW()
		WHERE guild_id = $1 AND discord_id = $2 AND balance >= $3
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, r.guildID, discordID, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrInsufficientBalance
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct balance for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return newBalance, nil
}

// ApplyClampedDelta sets balance = max(0, balance+delta). The previous value
// is read under the same row lock as the update.
func (r *BalanceRepository) ApplyClampedDelta(ctx context.Context, discordID int64, delta int64) (int64, int64, error) {
	if err := r.ensure(ctx, discordID); err != nil {
		return 0, 0, err
	}

	query := `
		WITH prev AS (
			SELECT balance
			FROM guild_balances
			WHERE guild_id = $1 AND discord_id = $2
			FOR UPDATE
		)
		UPDATE guild_balances g
		SET balance = GREATEST(0, prev.balance + $3), updated_at = NOW()
		FROM prev
		WHERE g.guild_id = $1 AND g.discord_id = $2
		RETURNING prev.balance, g.balance
	`

	var before, after int64
	if err := r.q.QueryRow(ctx, query, r.guildID, discordID, delta).Scan(&before, &after); err != nil {
		return 0, 0, fmt.Errorf("failed to apply balance delta for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return before, after, nil
}

// TryClaim credits reward and stamps now in one conditional update. A member
// who never claimed (last_claim_at = 0) always qualifies.
func (r *BalanceRepository) TryClaim(ctx context.Context, discordID int64, reward, now, cooldownSeconds int64) (int64, bool, error) {
	if err := r.ensure(ctx, discordID); err != nil {
		return 0, false, err
	}

	query := `
		UPDATE guild_balances
		SET balance = balance + $3, last_claim_at = $4, updated_at = NOW()
		WHERE guild_id = $1 AND discord_id = $2
		  AND (last_claim_at = 0 OR $4 - last_claim_at >= $5)
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, r.guildID, discordID, reward, now, cooldownSeconds).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to claim for user %d in guild %d: %w", discordID, r.guildID, err)
	}
	return newBalance, true, nil
}

// TopBalances returns the richest accounts in the guild
func (r *BalanceRepository) TopBalances(ctx context.Context, limit int) ([]*entities.GuildBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM guild_balances
		WHERE guild_id = $1 AND balance > 0
		ORDER BY balance DESC, discord_id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances in guild %d: %w", r.guildID, err)
	}
	defer rows.Close()

	var balances []*entities.GuildBalance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	return balances, nil
}
