package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// manageRoles hides admin commands from members who cannot use them
var manageRoles = int64(discordgo.PermissionManageRoles)

func floatPtr(v float64) *float64 {
	return &v
}

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func limitOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "limit",
		Description: "How many entries to show (1-25, default 10)",
		MinValue:    floatPtr(1),
		MaxValue:    25,
	}
}

func amountOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    true,
	}
}

// commandDefinitions lists every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		// Levels
		{
			Name:        "level",
			Description: "Check your message count and fix your level role",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Member to check (needs Manage Roles)", false)},
		},
		{
			Name:        "level-info",
			Description: "Show a message count breakdown without changing roles",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Member to look up (defaults to you)", false)},
		},
		{
			Name:                     "level-cooldown",
			Description:              "Show or change the cooldown between counted messages",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "New cooldown in seconds",
					MinValue:    floatPtr(0),
				},
			},
		},
		{
			Name:                     "level-set",
			Description:              "Set a member's total message count",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to update", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "total",
					Description: "New total message count",
					Required:    true,
				},
			},
		},
		{
			Name:                     "level-channel",
			Description:              "Set the channel for level-up announcements",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Announcement channel (leave empty to announce where members chat)",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
		{
			Name:        "level-top",
			Description: "Show the message count leaderboard",
			Options:     []*discordgo.ApplicationCommandOption{limitOption()},
		},
		{
			Name:                     "level-sync",
			Description:              "Bring every member's level role in line with their count",
			DefaultMemberPermissions: &manageRoles,
		},

		// Coins
		{
			Name:        "claim",
			Description: "Claim your periodic coin reward",
		},
		{
			Name:        "balance",
			Description: "Check a coin balance",
			Options:     []*discordgo.ApplicationCommandOption{userOption("Member to check (defaults to you)", false)},
		},
		{
			Name:        "transfer",
			Description: "Send coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to send coins to", true),
				amountOption("Amount to send"),
			},
		},
		{
			Name:                     "coins-give",
			Description:              "Give coins to a member",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to credit", true),
				amountOption("Amount to give"),
			},
		},
		{
			Name:                     "coins-take",
			Description:              "Take coins from a member",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to debit", true),
				amountOption("Amount to take"),
			},
		},
		{
			Name:        "coins-top",
			Description: "Show the richest members",
			Options:     []*discordgo.ApplicationCommandOption{limitOption()},
		},
		{
			Name:                     "claim-config",
			Description:              "Show or change the claim reward and cooldown",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "reward",
					Description: "Coins granted per claim",
					MinValue:    floatPtr(0),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cooldown",
					Description: "Seconds between claims",
					MinValue:    floatPtr(0),
				},
			},
		},
		{
			Name:                     "currency-symbol",
			Description:              "Show or change the currency symbol",
			DefaultMemberPermissions: &manageRoles,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "symbol",
					Description: "Unicode symbol or server emoji",
					MaxLength:   64,
				},
			},
		},

		// Games
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Stake for the hand",
					Required:    true,
				},
			},
		},
		{
			Name:        "blackjack-action",
			Description: "Act on your blackjack hand",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Hit", Value: "hit"},
						{Name: "Stand", Value: "stand"},
						{Name: "Double", Value: "double"},
						{Name: "Surrender", Value: "surrender"},
					},
				},
			},
		},
		{
			Name:        "dice",
			Description: "Bet on a die face, then reply with your pick",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Stake: 10, 50 or 100",
					Required:    true,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
