package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// GetDisplayName returns the server-specific display name for a user
// Falls back to username if nickname is not set or if there's an error
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.State.Member(guildID, userID)
	if err != nil {
		member, err = s.GuildMember(guildID, userID)
	}
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}

	return "User " + userID
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, strconv.FormatInt(userID, 10))
}

// DisplayNameOf prefers the member's nickname, then global name, then username
func DisplayNameOf(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil && member != nil {
		user = member.User
	}
	if user == nil {
		return "Unknown"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// ParseGuildID converts a Discord guild ID string to int64
func ParseGuildID(guildID string) (int64, error) {
	return strconv.ParseInt(guildID, 10, 64)
}

// ParseID converts any Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake to string
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// GetChannelMention returns a Discord mention string for a channel
func GetChannelMention(channelID int64) string {
	return "<#" + FormatID(channelID) + ">"
}

// InteractionUserID returns the invoking user's id for guild and DM interactions
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// CanManageRoles checks the invoking member's resolved channel permissions
func CanManageRoles(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&(discordgo.PermissionManageRoles|discordgo.PermissionAdministrator) != 0
}

// Invocation is the guild and member an interaction came from
type Invocation struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
}

// ParseInvocation extracts ids from a guild interaction
func ParseInvocation(i *discordgo.InteractionCreate) (Invocation, error) {
	guildID, err := ParseGuildID(i.GuildID)
	if err != nil {
		return Invocation{}, NewUserError("This command only works in a server.", "interaction outside a guild")
	}
	userID, err := ParseUserID(InteractionUserID(i))
	if err != nil {
		return Invocation{}, NewSystemError(err, "failed to parse user id")
	}
	channelID, err := ParseID(i.ChannelID)
	if err != nil {
		return Invocation{}, NewSystemError(err, "failed to parse channel id")
	}
	return Invocation{GuildID: guildID, UserID: userID, ChannelID: channelID}, nil
}
