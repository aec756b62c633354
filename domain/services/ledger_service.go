package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/domain/utils"

	log "github.com/sirupsen/logrus"
)

// ledgerService implements the LedgerService interface. Every mutation runs in
// its own unit of work and leaves a history row plus a BalanceChangeEvent.
type ledgerService struct {
	uowFactory interfaces.UnitOfWorkFactory
	settings   interfaces.GuildSettingsService
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory interfaces.UnitOfWorkFactory, settings interfaces.GuildSettingsService) interfaces.LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		settings:   settings,
	}
}

// withUnitOfWork runs fn in a transaction scoped to guildID and commits if fn
// succeeds
func (s *ledgerService) withUnitOfWork(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func recordChange(ctx context.Context, uow interfaces.UnitOfWork, history *entities.BalanceHistory) error {
	return utils.RecordBalanceChange(ctx, uow.BalanceHistoryRepository(), uow.EventBus(), history)
}

// GetBalance returns the member's balance, opening an empty account on first access
func (s *ledgerService) GetBalance(ctx context.Context, guildID, discordID int64) (int64, error) {
	var balance int64
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		account, err := uow.BalanceRepository().GetOrCreate(ctx, discordID)
		if err != nil {
			return fmt.Errorf("failed to get balance: %w", err)
		}
		balance = account.Balance
		return nil
	})
	return balance, err
}

// Add applies delta and clamps the result at zero. The history row carries the
// delta actually applied.
func (s *ledgerService) Add(ctx context.Context, guildID, discordID, delta int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error) {
	if delta == 0 {
		return s.GetBalance(ctx, guildID, discordID)
	}

	var newBalance int64
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		before, after, err := uow.BalanceRepository().ApplyClampedDelta(ctx, discordID, delta)
		if err != nil {
			return fmt.Errorf("failed to apply balance change: %w", err)
		}
		newBalance = after

		return recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:             guildID,
			DiscordID:           discordID,
			BalanceBefore:       before,
			BalanceAfter:        after,
			ChangeAmount:        after - before,
			TransactionType:     transactionType,
			TransactionMetadata: metadata,
		})
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit removes amount only if the balance covers it
func (s *ledgerService) Debit(ctx context.Context, guildID, discordID, amount int64, transactionType entities.TransactionType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewValidationError("Amount must be a positive integer.")
	}

	var newBalance int64
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		after, err := uow.BalanceRepository().DeductBalance(ctx, discordID, amount)
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return s.insufficient(ctx, uow, discordID, amount)
		}
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
		newBalance = after

		return recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:             guildID,
			DiscordID:           discordID,
			BalanceBefore:       after + amount,
			BalanceAfter:        after,
			ChangeAmount:        -amount,
			TransactionType:     transactionType,
			TransactionMetadata: metadata,
		})
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// insufficient builds the error for a debit that the balance could not cover
func (s *ledgerService) insufficient(ctx context.Context, uow interfaces.UnitOfWork, discordID, needed int64) error {
	account, err := uow.BalanceRepository().GetOrCreate(ctx, discordID)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	return &domain.InsufficientBalanceError{Balance: account.Balance, Needed: needed}
}

// Claim pays the guild's reward if the member's cooldown elapsed. A member who
// never claimed is always paid.
func (s *ledgerService) Claim(ctx context.Context, guildID, discordID int64, now time.Time) (*entities.ClaimResult, error) {
	settings, err := s.settings.GetSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get claim settings: %w", err)
	}
	reward := settings.Reward()
	cooldown := settings.ClaimCooldown()
	nowUnix := now.Unix()

	result := &entities.ClaimResult{Reward: reward}
	err = s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		newBalance, claimed, err := uow.BalanceRepository().TryClaim(ctx, discordID, reward, nowUnix, cooldown)
		if err != nil {
			return fmt.Errorf("failed to claim: %w", err)
		}

		if !claimed {
			account, err := uow.BalanceRepository().GetOrCreate(ctx, discordID)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}
			result.NewBalance = account.Balance
			result.Remaining = account.ClaimRemaining(nowUnix, cooldown)
			return nil
		}

		result.Rewarded = true
		result.NewBalance = newBalance
		return recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:         guildID,
			DiscordID:       discordID,
			BalanceBefore:   newBalance - reward,
			BalanceAfter:    newBalance,
			ChangeAmount:    reward,
			TransactionType: entities.TransactionTypeClaim,
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Transfer moves amount between two members in one transaction. Both rows are
// locked in id order first.
func (s *ledgerService) Transfer(ctx context.Context, guildID, fromID, toID, amount int64, recipientIsBot bool) (*entities.TransferResult, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("Amount must be a positive integer.")
	}
	if recipientIsBot {
		return nil, domain.NewValidationError("Bots don’t need money!")
	}
	if fromID == toID {
		return nil, domain.NewValidationError("You can’t send coins to yourself.")
	}

	result := &entities.TransferResult{Amount: amount}
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		repo := uow.BalanceRepository()

		locked, err := repo.LockForUpdate(ctx, fromID, toID)
		if err != nil {
			return fmt.Errorf("failed to lock balances: %w", err)
		}
		sender, ok := locked[fromID]
		if !ok {
			return fmt.Errorf("sender %d missing after lock", fromID)
		}
		if !sender.CanAfford(amount) {
			return &domain.InsufficientBalanceError{Balance: sender.Balance, Needed: amount}
		}

		fromBalance, err := repo.DeductBalance(ctx, fromID, amount)
		if err != nil {
			return fmt.Errorf("failed to debit sender: %w", err)
		}
		toBalance, err := repo.AddBalance(ctx, toID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit recipient: %w", err)
		}
		result.FromBalance = fromBalance
		result.ToBalance = toBalance

		if err := recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:             guildID,
			DiscordID:           fromID,
			BalanceBefore:       fromBalance + amount,
			BalanceAfter:        fromBalance,
			ChangeAmount:        -amount,
			TransactionType:     entities.TransactionTypeTransferOut,
			RelatedDiscordID:    &toID,
			TransactionMetadata: map[string]any{"transfer_to": toID},
		}); err != nil {
			return err
		}
		return recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:             guildID,
			DiscordID:           toID,
			BalanceBefore:       toBalance - amount,
			BalanceAfter:        toBalance,
			ChangeAmount:        amount,
			TransactionType:     entities.TransactionTypeTransferIn,
			RelatedDiscordID:    &fromID,
			TransactionMetadata: map[string]any{"transfer_from": fromID},
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"from":     fromID,
		"to":       toID,
		"amount":   amount,
	}).Info("Transfer completed")

	return result, nil
}

// AdminGrant credits amount
func (s *ledgerService) AdminGrant(ctx context.Context, guildID, discordID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.NewValidationError("Amount must be a positive integer.")
	}
	return s.Add(ctx, guildID, discordID, amount, entities.TransactionTypeAdminGrant, nil)
}

// AdminRevoke removes up to amount. taken is what was actually removed, which
// is less than amount when the balance was smaller.
func (s *ledgerService) AdminRevoke(ctx context.Context, guildID, discordID, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, domain.NewValidationError("Amount must be a positive integer.")
	}

	var newBalance, taken int64
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		before, after, err := uow.BalanceRepository().ApplyClampedDelta(ctx, discordID, -amount)
		if err != nil {
			return fmt.Errorf("failed to revoke balance: %w", err)
		}
		newBalance = after
		taken = before - after

		return recordChange(ctx, uow, &entities.BalanceHistory{
			GuildID:             guildID,
			DiscordID:           discordID,
			BalanceBefore:       before,
			BalanceAfter:        after,
			ChangeAmount:        after - before,
			TransactionType:     entities.TransactionTypeAdminRevoke,
			TransactionMetadata: map[string]any{"requested": amount},
		})
	})
	if err != nil {
		return 0, 0, err
	}
	return newBalance, taken, nil
}

// TopBalances returns the richest members, limit clamped to 1..25
func (s *ledgerService) TopBalances(ctx context.Context, guildID int64, limit int) ([]*entities.GuildBalance, error) {
	limit = ClampLeaderboardLimit(limit)

	var balances []*entities.GuildBalance
	err := s.withUnitOfWork(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		var err error
		balances, err = uow.BalanceRepository().TopBalances(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to get top balances: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}
