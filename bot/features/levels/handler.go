package levels

import (
	"context"
	"fmt"

	"levelbot/bot/common"
	"levelbot/domain/entities"
	"levelbot/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const memberPageSize = 1000

func (f *Feature) handleLevel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	targetID, owner := inv.UserID, "Your"
	if user, member, ok := common.CommandOptions(i).User(i, "user"); ok && user.ID != common.InteractionUserID(i) {
		if !common.CanManageRoles(i) {
			return common.NewUserError("You can only check your own level.", "level check on another member without Manage Roles")
		}
		if targetID, err = common.ParseUserID(user.ID); err != nil {
			return common.NewSystemError(err, "failed to parse target user id")
		}
		owner = common.DisplayNameOf(member, user) + "'s"
	}

	status, err := f.levels.Reconcile(ctx, inv.GuildID, targetID)
	if err != nil {
		return common.Classify(err, "failed to reconcile level")
	}

	if err := common.RespondWithMessage(s, i, formatLevelCheck(owner, status), false); err != nil {
		log.Errorf("Error responding to level command: %v", err)
	}

	if status.Privilege.Granted {
		f.AnnounceLevelUp(ctx, inv.GuildID, inv.ChannelID, targetID, status)
	}
	return nil
}

func (f *Feature) handleLevelInfo(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	targetID, name := inv.UserID, common.DisplayNameOf(i.Member, nil)
	if user, member, ok := common.CommandOptions(i).User(i, "user"); ok {
		if targetID, err = common.ParseUserID(user.ID); err != nil {
			return common.NewSystemError(err, "failed to parse target user id")
		}
		name = common.DisplayNameOf(member, user)
	}

	activity, err := f.activity.GetTotal(ctx, inv.GuildID, targetID)
	if err != nil {
		return common.Classify(err, "failed to read activity")
	}

	tier := f.levels.Resolve(activity.Total())
	if err := common.RespondWithMessage(s, i, formatBreakdown(name, activity, tier), false); err != nil {
		log.Errorf("Error responding to level-info command: %v", err)
	}
	return nil
}

func (f *Feature) handleCooldown(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return common.NewUserError("You need **Manage Roles** to do that.", "level-cooldown without Manage Roles")
	}

	seconds, ok := common.CommandOptions(i).Int("seconds")
	if !ok {
		current, err := f.activity.GetCooldown(ctx, inv.GuildID)
		if err != nil {
			return common.Classify(err, "failed to read cooldown")
		}
		return common.RespondWithMessage(s, i, fmt.Sprintf("Current cooldown is `%d` seconds.", current), false)
	}

	old, err := f.activity.SetCooldown(ctx, inv.GuildID, int(seconds))
	if err != nil {
		return common.Classify(err, "failed to set cooldown")
	}

	log.WithFields(log.Fields{
		"guild_id": inv.GuildID,
		"user_id":  inv.UserID,
		"old":      old,
		"new":      seconds,
	}).Info("Activity cooldown changed")

	return common.RespondWithMessage(s, i, fmt.Sprintf("✅ Cooldown changed from `%d`s to `%d`s.", old, seconds), false)
}

func (f *Feature) handleSet(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return common.NewUserError("You need **Manage Roles** to do that.", "level-set without Manage Roles")
	}

	options := common.CommandOptions(i)
	user, member, _ := options.User(i, "user")
	target, _ := options.Int("total")
	if user == nil {
		return common.NewUserError("Pick a member.", "level-set without a user")
	}
	targetID, err := common.ParseUserID(user.ID)
	if err != nil {
		return common.NewSystemError(err, "failed to parse target user id")
	}

	stored, err := f.activity.SetAdjustedForTarget(ctx, inv.GuildID, targetID, target)
	if err != nil {
		return common.Classify(err, "failed to set adjusted count")
	}

	status, err := f.levels.Reconcile(ctx, inv.GuildID, targetID)
	if err != nil {
		return common.Classify(err, "failed to reconcile level")
	}

	log.WithFields(log.Fields{
		"guild_id":  inv.GuildID,
		"user_id":   inv.UserID,
		"target_id": targetID,
		"total":     target,
		"adjusted":  stored.Adjusted,
	}).Info("Member total set")

	return common.RespondWithMessage(s, i, formatSet(common.DisplayNameOf(member, user), target, stored, status), false)
}

func (f *Feature) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}
	if !common.CanManageRoles(i) {
		return common.NewUserError("You need **Manage Roles** to do that.", "level-channel without Manage Roles")
	}

	channelIDStr, ok := common.CommandOptions(i).Channel("channel")
	if !ok {
		if err := f.settings.SetLevelUpChannel(ctx, inv.GuildID, nil); err != nil {
			return common.Classify(err, "failed to clear level-up channel")
		}
		return common.RespondWithMessage(s, i, "✅ Level-up announcements will appear where members level up.", false)
	}

	channelID, err := common.ParseID(channelIDStr)
	if err != nil {
		return common.NewSystemError(err, "failed to parse channel id")
	}
	if err := f.settings.SetLevelUpChannel(ctx, inv.GuildID, &channelID); err != nil {
		return common.Classify(err, "failed to set level-up channel")
	}

	return common.RespondWithMessage(s, i,
		fmt.Sprintf("✅ Level-up announcements will now appear in %s.", common.GetChannelMention(channelID)), false)
}

func (f *Feature) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	limit := common.DefaultLeaderboardSize
	if requested, ok := common.CommandOptions(i).Int("limit"); ok {
		limit = services.ClampLeaderboardLimit(int(requested))
	}

	top, err := f.activity.TopActivity(ctx, inv.GuildID, limit)
	if err != nil {
		return common.Classify(err, "failed to load activity leaderboard")
	}
	if len(top) == 0 {
		return common.RespondWithMessage(s, i, "No message data yet. Start chatting and try again!", false)
	}

	rows := make([]leaderboardRow, 0, len(top))
	for _, entry := range top {
		rows = append(rows, leaderboardRow{
			name:  common.GetDisplayNameInt64(s, i.GuildID, entry.DiscordID),
			total: entry.Total(),
			tier:  f.levels.Resolve(entry.Total()).Name,
		})
	}

	return common.RespondWithEmbed(s, i, buildLeaderboardEmbed(rows), nil, false)
}

// handleSync reconciles every human member of the guild. It can take a while
// on large guilds so the reply is deferred.
func (f *Feature) handleSync(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	inv, err := common.ParseInvocation(i)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}
	if !common.CanManageRoles(i) {
		common.HandleError(s, i, common.NewUserError("You need **Manage Roles** to do that.", "level-sync without Manage Roles"), false)
		return
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring level-sync response: %v", err)
		return
	}

	synced, err := f.SyncGuild(ctx, inv.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "level sync failed"), true)
		return
	}

	if _, err := common.FollowUpWithMessage(s, i, fmt.Sprintf("✅ LV Sync complete. Updated %d members.", synced)); err != nil {
		log.Errorf("Error sending level-sync result: %v", err)
	}
}

// SyncGuild reconciles every non-bot member and returns how many changed
func (f *Feature) SyncGuild(ctx context.Context, guildID int64) (int, error) {
	gid := common.FormatID(guildID)
	synced, after := 0, ""

	for {
		members, err := f.session.GuildMembers(gid, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return synced, fmt.Errorf("failed to list guild members: %w", err)
		}

		for _, member := range members {
			if member.User == nil || member.User.Bot {
				continue
			}
			memberID, err := common.ParseUserID(member.User.ID)
			if err != nil {
				continue
			}
			status, err := f.levels.Reconcile(ctx, guildID, memberID)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"guild_id": guildID,
					"user_id":  memberID,
				}).Warn("Failed to reconcile member during sync")
				continue
			}
			if status.Privilege.Changed {
				synced++
			}
		}

		if len(members) < memberPageSize {
			break
		}
		after = members[len(members)-1].User.ID
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"synced":   synced,
	}).Info("Level roles synced")

	return synced, nil
}

// AnnounceLevelUp posts the level-up embed to the guild's announce channel, or
// to originChannelID when none is configured
func (f *Feature) AnnounceLevelUp(ctx context.Context, guildID, originChannelID, memberID int64, status *entities.LevelStatus) {
	channelID := originChannelID
	if settings, err := f.settings.GetSettings(ctx, guildID); err == nil && settings.HasLevelUpChannel() {
		channelID = *settings.LevelUpChannelID
	}
	channel := common.FormatID(channelID)

	_, err := f.session.ChannelMessageSendEmbed(channel, buildLevelUpEmbed(memberID, status))
	if err == nil {
		return
	}

	log.WithError(err).WithField("channel_id", channelID).Warn("Failed to send level-up embed")
	if _, err := f.session.ChannelMessageSend(channel, levelUpFallback(memberID, status)); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Error("Failed to announce level up")
	}
}
