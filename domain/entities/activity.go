package entities

// MemberActivity is a member's message count within one guild. Live is the
// counter bumped by chat; Adjusted is an offset an admin pinned on top of it.
type MemberActivity struct {
	GuildID   int64
	DiscordID int64
	Live      int64
	Adjusted  int64
}

// Total returns live plus adjusted
func (a MemberActivity) Total() int64 {
	return a.Live + a.Adjusted
}

// AdjustedForTarget returns the offset that makes the total equal target
// given the current live count. Never negative.
func AdjustedForTarget(target, live int64) int64 {
	if target-live < 0 {
		return 0
	}
	return target - live
}
