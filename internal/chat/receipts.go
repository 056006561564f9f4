package chat

import (
	"time"

	"github.com/greenroom-app/greenroom/internal/types"
)

// ReadWatermark computes the timestamp below which a message counts as
// read by all other participants: the minimum of the non-nil LastReadAt
// values among participants other than selfID. For a direct conversation
// this reduces to the single counterpart's marker. ok is false when no
// other participant has a read marker, in which case nothing is read.
func ReadWatermark(participants []types.Participant, selfID string) (time.Time, bool) {
	var watermark time.Time
	found := false
	for _, p := range participants {
		if p.UserID == selfID || p.LastReadAt == nil {
			continue
		}
		if !found || p.LastReadAt.Before(watermark) {
			watermark = *p.LastReadAt
			found = true
		}
	}
	return watermark, found
}

// IsRead reports whether msg was created at or before the watermark.
func IsRead(msg types.Message, watermark time.Time) bool {
	return !msg.CreatedAt.After(watermark)
}
