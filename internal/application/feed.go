package application

// DefaultFeedMax bounds the recent-activity feed when no limit is configured.
const DefaultFeedMax = 50

// PushActivity returns a new feed with entry first, trimmed to maxLen entries.
// The input feed is never modified.
func PushActivity(feed Feed, entry ActivityEntry, maxLen int) Feed {
	if maxLen <= 0 {
		maxLen = DefaultFeedMax
	}

	size := len(feed) + 1
	if size > maxLen {
		size = maxLen
	}

	out := make(Feed, size)
	out[0] = entry
	copy(out[1:], feed)
	return out
}
