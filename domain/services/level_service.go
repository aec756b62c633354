package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/interfaces"
	"levelbot/events"

	log "github.com/sirupsen/logrus"
)

// Privilege reconciliation messages shown to members
const (
	msgPrivilegeDenied   = "I need **Manage Roles** and my role must be above LV roles."
	msgPrivilegeAPIError = "Discord API error while assigning roles."
)

// levelService implements the LevelService interface
type levelService struct {
	activity  interfaces.ActivityService
	directory interfaces.PrivilegeDirectory
	publisher interfaces.EventPublisher
}

// NewLevelService creates a level service. publisher may be nil.
func NewLevelService(
	activity interfaces.ActivityService,
	directory interfaces.PrivilegeDirectory,
	publisher interfaces.EventPublisher,
) interfaces.LevelService {
	return &levelService{
		activity:  activity,
		directory: directory,
		publisher: publisher,
	}
}

// Resolve returns the highest tier whose threshold is at most total
func (s *levelService) Resolve(total int64) entities.LevelTier {
	for _, tier := range entities.LevelTiers {
		if total >= tier.Threshold {
			return tier
		}
	}
	return entities.FloorTier()
}

// NextThreshold returns the lowest tier strictly above total. ok is false at
// the top tier.
func (s *levelService) NextThreshold(total int64) (entities.LevelTier, bool) {
	for i := len(entities.LevelTiers) - 1; i >= 0; i-- {
		if total < entities.LevelTiers[i].Threshold {
			return entities.LevelTiers[i], true
		}
	}
	return entities.LevelTier{}, false
}

// EnsurePrivilege makes levelName the only tier role the member holds. Roles
// are looked up by name on every call so renamed or recreated roles are
// picked up. Directory failures are reported in the message, never returned.
func (s *levelService) EnsurePrivilege(ctx context.Context, guildID, discordID int64, levelName string) entities.PrivilegeResult {
	logger := log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  discordID,
		"level":    levelName,
	})

	privileges, err := s.directory.GuildPrivileges(ctx, guildID)
	if err != nil {
		logger.WithError(err).Warn("Failed to list guild roles")
		return privilegeFailure(err)
	}

	target := findPrivilege(privileges, levelName)
	if target == nil {
		return entities.PrivilegeResult{
			Message: fmt.Sprintf("Missing `%s` role. Ask an admin to create it.", levelName),
		}
	}

	heldIDs, err := s.directory.MemberPrivilegeIDs(ctx, guildID, discordID)
	if err != nil {
		logger.WithError(err).Warn("Failed to read member roles")
		return privilegeFailure(err)
	}
	held := make(map[string]bool, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = true
	}

	changed, granted := false, false
	if !held[target.ID] {
		if err := s.directory.Grant(ctx, guildID, discordID, target.ID, "Reached "+levelName); err != nil {
			logger.WithError(err).Warn("Failed to grant level role")
			return privilegeFailure(err)
		}
		changed, granted = true, true
	}

	for _, tier := range entities.LevelTiers {
		privilege := findPrivilege(privileges, tier.Name)
		if privilege == nil || privilege.ID == target.ID || !held[privilege.ID] {
			continue
		}
		if err := s.directory.Revoke(ctx, guildID, discordID, privilege.ID, "Switched to "+levelName); err != nil {
			logger.WithError(err).Warn("Failed to revoke level role")
			return privilegeFailure(err)
		}
		changed = true
	}

	if changed {
		logger.Info("Level role updated")
	}

	return entities.PrivilegeResult{
		Changed: changed,
		Granted: granted,
		Message: fmt.Sprintf("You now have **%s**.", levelName),
	}
}

func findPrivilege(privileges []interfaces.Privilege, name string) *interfaces.Privilege {
	for i := range privileges {
		if strings.EqualFold(privileges[i].Name, name) {
			return &privileges[i]
		}
	}
	return nil
}

func privilegeFailure(err error) entities.PrivilegeResult {
	if errors.Is(err, domain.ErrPrivilegeDenied) {
		return entities.PrivilegeResult{Message: msgPrivilegeDenied}
	}
	return entities.PrivilegeResult{Message: msgPrivilegeAPIError}
}

// Reconcile reads the member's total and brings their tier role in line with it
func (s *levelService) Reconcile(ctx context.Context, guildID, discordID int64) (*entities.LevelStatus, error) {
	activity, err := s.activity.GetTotal(ctx, guildID, discordID)
	if err != nil {
		return nil, err
	}

	tier := s.Resolve(activity.Total())
	status := &entities.LevelStatus{
		Activity:  activity,
		Tier:      tier,
		Privilege: s.EnsurePrivilege(ctx, guildID, discordID, tier.Name),
	}
	if next, ok := s.NextThreshold(activity.Total()); ok {
		status.Next = &next
	}

	if status.Privilege.Granted && s.publisher != nil {
		if err := s.publisher.Publish(events.LevelChangeEvent{
			GuildID:   guildID,
			DiscordID: discordID,
			Level:     tier.Name,
			Total:     activity.Total(),
		}); err != nil {
			log.WithError(err).Warn("Failed to publish level change event")
		}
	}

	return status, nil
}

// MeetsTier reports whether the member's total reaches tier
func (s *levelService) MeetsTier(ctx context.Context, guildID, discordID int64, tier entities.LevelTier) (bool, entities.MemberActivity, error) {
	activity, err := s.activity.GetTotal(ctx, guildID, discordID)
	if err != nil {
		return false, entities.MemberActivity{}, err
	}
	return activity.Total() >= tier.Threshold, activity, nil
}
