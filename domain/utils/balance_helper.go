package utils

import (
	"context"
	"fmt"

	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange writes a history row and queues the matching
// BalanceChangeEvent. Zero-delta changes are skipped.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if history.ChangeAmount == 0 {
		return nil
	}
	if err := history.Validate(); err != nil {
		return fmt.Errorf("invalid balance change: %w", err)
	}

	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		GuildID:         history.GuildID,
		DiscordID:       history.DiscordID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	}
	log.WithFields(log.Fields{
		"guild_id":        event.GuildID,
		"user_id":         event.DiscordID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")

	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
