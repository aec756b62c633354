// Package adjustments stores the admin-pinned activity offsets outside the
// main database, one small JSON record per member.
package adjustments

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type record struct {
	AdjustedMessageCount int64 `json:"adjusted_message_count"`
}

func encodeRecord(adjusted int64) ([]byte, error) {
	return json.Marshal(record{AdjustedMessageCount: adjusted})
}

// decodeRecord parses a stored record. Negative values read as 0.
func decodeRecord(data []byte) (int64, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return 0, fmt.Errorf("corrupt adjustment record: %w", err)
	}
	if r.AdjustedMessageCount < 0 {
		return 0, nil
	}
	return r.AdjustedMessageCount, nil
}

func guildDir(guildID int64) string {
	return fmt.Sprintf("guild_%d", guildID)
}

// memberIDFromName parses "<id><ext>"
func memberIDFromName(name, ext string) (int64, bool) {
	if !strings.HasSuffix(name, ext) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(name, ext), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
