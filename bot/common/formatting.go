package common

import (
	"fmt"
	"strconv"
)

// FormatAmount renders an amount with the guild's currency symbol in front
func FormatAmount(symbol string, amount int64) string {
	return symbol + strconv.FormatInt(amount, 10)
}

// FormatCountdown renders seconds as "Hh Mm Ss"
func FormatCountdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60)
}

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// RankTag returns a medal for the podium and "N." below it
func RankTag(rank int) string {
	if medal, ok := medals[rank]; ok {
		return medal
	}
	return fmt.Sprintf("%d.", rank)
}
