package common

import (
	"github.com/bwmarrin/discordgo"
)

// Options indexes slash command options by name
type Options map[string]*discordgo.ApplicationCommandInteractionDataOption

// CommandOptions indexes the top-level options of a slash command
func CommandOptions(i *discordgo.InteractionCreate) Options {
	data := i.ApplicationCommandData()
	options := make(Options, len(data.Options))
	for _, opt := range data.Options {
		options[opt.Name] = opt
	}
	return options
}

// Int returns an integer option and whether it was supplied
func (o Options) Int(name string) (int64, bool) {
	opt, ok := o[name]
	if !ok {
		return 0, false
	}
	return opt.IntValue(), true
}

// String returns a string option and whether it was supplied
func (o Options) String(name string) (string, bool) {
	opt, ok := o[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

// User returns a user option using the interaction's resolved data so no
// extra API call is made. member is nil when the user is not in the guild.
func (o Options) User(i *discordgo.InteractionCreate, name string) (*discordgo.User, *discordgo.Member, bool) {
	opt, ok := o[name]
	if !ok {
		return nil, nil, false
	}
	id, _ := opt.Value.(string)

	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return &discordgo.User{ID: id}, nil, true
	}

	user := resolved.Users[id]
	if user == nil {
		user = &discordgo.User{ID: id}
	}
	member := resolved.Members[id]
	if member != nil && member.User == nil {
		member.User = user
	}
	return user, member, true
}

// Channel returns a channel option id
func (o Options) Channel(name string) (string, bool) {
	opt, ok := o[name]
	if !ok {
		return "", false
	}
	id, _ := opt.Value.(string)
	return id, id != ""
}
