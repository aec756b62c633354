package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorGold    = 0xF1C40F
)

// Leaderboard constants
const (
	DefaultLeaderboardSize = 10
)

