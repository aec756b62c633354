package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"levelbot/bot/common"
	"levelbot/domain"
	"levelbot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// discordDirectory exposes guild roles as privileges. Reads go to the session
// state first and fall back to the REST API on a miss.
type discordDirectory struct {
	session *discordgo.Session
}

// NewDiscordDirectory creates a PrivilegeDirectory backed by guild roles
func NewDiscordDirectory(session *discordgo.Session) interfaces.PrivilegeDirectory {
	return &discordDirectory{session: session}
}

func (d *discordDirectory) GuildPrivileges(ctx context.Context, guildID int64) ([]interfaces.Privilege, error) {
	gid := common.FormatID(guildID)

	var roles []*discordgo.Role
	if guild, err := d.session.State.Guild(gid); err == nil && len(guild.Roles) > 0 {
		roles = guild.Roles
	} else {
		roles, err = d.session.GuildRoles(gid, discordgo.WithContext(ctx))
		if err != nil {
			return nil, wrapDiscordError(err, "failed to list guild roles")
		}
	}

	privileges := make([]interfaces.Privilege, 0, len(roles))
	for _, role := range roles {
		privileges = append(privileges, interfaces.Privilege{ID: role.ID, Name: role.Name})
	}
	return privileges, nil
}

func (d *discordDirectory) MemberPrivilegeIDs(ctx context.Context, guildID, discordID int64) ([]string, error) {
	gid, uid := common.FormatID(guildID), common.FormatID(discordID)

	if member, err := d.session.State.Member(gid, uid); err == nil {
		return append([]string(nil), member.Roles...), nil
	}

	member, err := d.session.GuildMember(gid, uid, discordgo.WithContext(ctx))
	if err != nil {
		return nil, wrapDiscordError(err, "failed to get guild member")
	}
	return member.Roles, nil
}

func (d *discordDirectory) Grant(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error {
	err := d.session.GuildMemberRoleAdd(common.FormatID(guildID), common.FormatID(discordID), privilegeID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return wrapDiscordError(err, "failed to add role")
	}
	return nil
}

func (d *discordDirectory) Revoke(ctx context.Context, guildID, discordID int64, privilegeID, reason string) error {
	err := d.session.GuildMemberRoleRemove(common.FormatID(guildID), common.FormatID(discordID), privilegeID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return wrapDiscordError(err, "failed to remove role")
	}
	return nil
}

// wrapDiscordError maps a missing-permission response to ErrPrivilegeDenied
func wrapDiscordError(err error, message string) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		forbidden := restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
		missingPermissions := restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions
		if forbidden || missingPermissions {
			return fmt.Errorf("%s: %w: %v", message, domain.ErrPrivilegeDenied, err)
		}
	}
	return fmt.Errorf("%s: %w", message, err)
}
