package models

// MaxHistory bounds the recently played list.
const MaxHistory = 50

// PushHistory returns a new history with t at the front. An existing entry with the same id is moved
// rather than duplicated, and the result is truncated to MaxHistory.
func PushHistory(history []Track, t Track) []Track {
	out := make([]Track, 0, min(len(history)+1, MaxHistory))
	out = append(out, t)
	for _, h := range history {
		if len(out) == MaxHistory {
			break
		}
		if h.ID != t.ID {
			out = append(out, h)
		}
	}
	return out
}

// NormalizeHistory drops invalid and repeated entries (first occurrence wins) and applies MaxHistory.
func NormalizeHistory(history []Track) []Track {
	out := make([]Track, 0, min(len(history), MaxHistory))
	seen := make(map[string]bool, len(history))
	for _, t := range history {
		if len(out) == MaxHistory {
			break
		}
		if t.Validate() != nil || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
