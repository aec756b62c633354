package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

const (
	// MinCountableLength is the shortest trimmed message that counts
	MinCountableLength = 3

	// MaxLeaderboardSize caps every top-N listing
	MaxLeaderboardSize = 25

	debounceCacheSize = 50000
)

type memberKey struct {
	guildID   int64
	discordID int64
}

// activityService implements the ActivityService interface
type activityService struct {
	uowFactory  interfaces.UnitOfWorkFactory
	adjustments interfaces.AdjustmentStore
	settings    interfaces.GuildSettingsService

	// last counted time per member. Eviction only allows one early count.
	mu       sync.Mutex
	debounce *lru.Cache
}

// NewActivityService creates a new activity service
func NewActivityService(
	uowFactory interfaces.UnitOfWorkFactory,
	adjustments interfaces.AdjustmentStore,
	settings interfaces.GuildSettingsService,
) interfaces.ActivityService {
	debounce, _ := lru.New(debounceCacheSize)
	return &activityService{
		uowFactory:  uowFactory,
		adjustments: adjustments,
		settings:    settings,
		debounce:    debounce,
	}
}

// ClampLeaderboardLimit keeps limit within 1..MaxLeaderboardSize
func ClampLeaderboardLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return limit
}

// OnMessage counts a chat message. The debounce stamp is taken before the
// write and restored if the write fails, so a failed increment never eats the
// member's next message.
func (s *activityService) OnMessage(ctx context.Context, guildID, discordID int64, content string, now time.Time) (bool, error) {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinCountableLength {
		return false, nil
	}

	cooldown, err := s.GetCooldown(ctx, guildID)
	if err != nil {
		return false, err
	}

	key := memberKey{guildID: guildID, discordID: discordID}

	s.mu.Lock()
	prev, hadPrev := s.debounce.Get(key)
	if hadPrev && now.Sub(prev.(time.Time)) < time.Duration(cooldown)*time.Second {
		s.mu.Unlock()
		return false, nil
	}
	s.debounce.Add(key, now)
	s.mu.Unlock()

	live, err := s.increment(ctx, guildID, discordID)
	if err != nil {
		s.restoreStamp(key, now, prev, hadPrev)
		return false, err
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  discordID,
		"live":     live,
	}).Debug("Counted message")

	return true, nil
}

func (s *activityService) increment(ctx context.Context, guildID, discordID int64) (int64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	live, err := uow.ActivityRepository().Increment(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to count message: %w", err)
	}

	if err := uow.EventBus().Publish(events.ActivityCountedEvent{
		GuildID:   guildID,
		DiscordID: discordID,
		Live:      live,
	}); err != nil {
		return 0, fmt.Errorf("failed to publish activity event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit message count: %w", err)
	}
	return live, nil
}

// restoreStamp puts back the previous stamp unless a newer message replaced ours
func (s *activityService) restoreStamp(key memberKey, ours time.Time, prev any, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.debounce.Get(key)
	if !ok || !current.(time.Time).Equal(ours) {
		return
	}
	if hadPrev {
		s.debounce.Add(key, prev)
	} else {
		s.debounce.Remove(key)
	}
}

// GetTotal returns live, adjusted and their sum
func (s *activityService) GetTotal(ctx context.Context, guildID, discordID int64) (entities.MemberActivity, error) {
	live, err := s.liveCount(ctx, guildID, discordID)
	if err != nil {
		return entities.MemberActivity{}, err
	}

	return entities.MemberActivity{
		GuildID:   guildID,
		DiscordID: discordID,
		Live:      live,
		Adjusted:  s.adjustments.Get(ctx, guildID, discordID),
	}, nil
}

func (s *activityService) liveCount(ctx context.Context, guildID, discordID int64) (int64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	live, err := uow.ActivityRepository().GetCount(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to get message count: %w", err)
	}
	return live, uow.Commit()
}

// SetAdjustedForTarget pins the member's total to target by overwriting the
// adjusted record. The live count is not touched.
func (s *activityService) SetAdjustedForTarget(ctx context.Context, guildID, discordID, targetTotal int64) (entities.MemberActivity, error) {
	if targetTotal < 0 {
		return entities.MemberActivity{}, domain.NewValidationError("Total must be non-negative.")
	}

	live, err := s.liveCount(ctx, guildID, discordID)
	if err != nil {
		return entities.MemberActivity{}, err
	}

	adjusted := entities.AdjustedForTarget(targetTotal, live)
	if err := s.adjustments.Set(ctx, guildID, discordID, adjusted); err != nil {
		return entities.MemberActivity{}, fmt.Errorf("failed to store adjusted count: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  discordID,
		"target":   targetTotal,
		"live":     live,
		"adjusted": adjusted,
	}).Info("Set adjusted message count")

	return entities.MemberActivity{
		GuildID:   guildID,
		DiscordID: discordID,
		Live:      live,
		Adjusted:  adjusted,
	}, nil
}

// GetCooldown returns the guild's debounce window in seconds
func (s *activityService) GetCooldown(ctx context.Context, guildID int64) (int, error) {
	settings, err := s.settings.GetSettings(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to get activity cooldown: %w", err)
	}
	return settings.ActivityCooldown(), nil
}

// SetCooldown changes the debounce window and returns the previous one
func (s *activityService) SetCooldown(ctx context.Context, guildID int64, seconds int) (int, error) {
	if seconds < 0 {
		return 0, domain.NewValidationError("Cooldown must be non-negative.")
	}

	old, err := s.GetCooldown(ctx, guildID)
	if err != nil {
		return 0, err
	}

	if err := s.settings.SetActivityCooldown(ctx, guildID, seconds); err != nil {
		return 0, err
	}
	return old, nil
}

// TopActivity merges live counts with adjusted records. Members that only
// have an adjusted record are included.
func (s *activityService) TopActivity(ctx context.Context, guildID int64, limit int) ([]entities.MemberActivity, error) {
	limit = ClampLeaderboardLimit(limit)

	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	counts, err := uow.ActivityRepository().ListCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list message counts: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	adjusted, err := s.adjustments.List(ctx, guildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", guildID).Warn("Failed to list adjusted counts, using live counts only")
		adjusted = nil
	}

	merged := make(map[int64]*entities.MemberActivity, len(counts)+len(adjusted))
	for _, c := range counts {
		merged[c.DiscordID] = &entities.MemberActivity{GuildID: guildID, DiscordID: c.DiscordID, Live: c.Live}
	}
	for discordID, adj := range adjusted {
		if m, ok := merged[discordID]; ok {
			m.Adjusted = adj
			continue
		}
		merged[discordID] = &entities.MemberActivity{GuildID: guildID, DiscordID: discordID, Adjusted: adj}
	}

	rows := make([]entities.MemberActivity, 0, len(merged))
	for _, m := range merged {
		rows = append(rows, *m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total() != rows[j].Total() {
			return rows[i].Total() > rows[j].Total()
		}
		return rows[i].DiscordID < rows[j].DiscordID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
