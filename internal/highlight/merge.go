package highlight

import "sort"

// Merge reconciles the local list for one article against a full server
// snapshot and returns the new local list.
//
// Matching runs server-id first, fingerprint second. Server records with no
// local counterpart are adopted as freshly-synced locals. A matched local
// that is a confirmed pending delete keeps its tombstone (the server has
// not caught up yet). Otherwise the server's fields win, except Note, which
// is last-write-wins: the local note is kept when LocalUpdatedAt is at
// least as recent as the server's UpdatedAt/CreatedAt. Client bookkeeping
// (ClientID, SyncStatus, PendingOp, Deleted, LastError) always survives
// from the local record, since the server has no concept of those fields.
//
// Unmatched locals are kept when they carry a tombstone, a pending
// operation, or a non-synced status. A synced record with nothing pending
// that is absent from the snapshot is dropped: the snapshot is the complete
// server set for the article, so absence means it was deleted upstream.
//
// The result is de-duplicated by ClientID (first occurrence wins), filtered
// to articleURL, and sorted ascending by CharacterStart; ties keep input
// order.
func Merge(articleURL string, local []LocalHighlight, server []Highlight) []LocalHighlight {
	byServerID := make(map[int64]int, len(local))
	byFingerprint := make(map[string]int, len(local))
	for i, l := range local {
		if key := l.serverKey(); key != 0 {
			if _, ok := byServerID[key]; !ok {
				byServerID[key] = i
			}
		}
		fp := Fingerprint(l.Highlight)
		if _, ok := byFingerprint[fp]; !ok {
			byFingerprint[fp] = i
		}
	}

	matched := make([]bool, len(local))
	merged := make([]LocalHighlight, 0, len(local)+len(server))

	for _, s := range server {
		idx := -1
		if s.ID != 0 {
			if i, ok := byServerID[s.ID]; ok {
				idx = i
			}
		}
		if idx < 0 {
			if i, ok := byFingerprint[Fingerprint(s)]; ok {
				idx = i
			}
		}

		if idx < 0 {
			merged = append(merged, adoptServer(s))
			continue
		}

		matched[idx] = true
		l := local[idx]
		if l.Deleted && l.PendingOp == OpDelete {
			merged = append(merged, l)
			continue
		}
		merged = append(merged, mergeRecord(l, s))
	}

	for i, l := range local {
		if matched[i] {
			continue
		}
		if l.Deleted || l.PendingOp != OpNone || l.SyncStatus != StatusSynced {
			merged = append(merged, l)
		}
		// Synced, nothing pending, gone from the snapshot: deleted upstream.
	}

	seen := make(map[string]struct{}, len(merged))
	out := merged[:0]
	for _, h := range merged {
		if h.ArticleURL != articleURL {
			continue
		}
		if _, ok := seen[h.ClientID]; ok {
			continue
		}
		seen[h.ClientID] = struct{}{}
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CharacterStart < out[j].CharacterStart
	})
	return out
}

// adoptServer turns a server record with no local counterpart into a
// freshly-synced local record.
func adoptServer(s Highlight) LocalHighlight {
	return LocalHighlight{
		Highlight:      s,
		ClientID:       NewClientID(),
		ServerID:       s.ID,
		SyncStatus:     StatusSynced,
		PendingOp:      OpNone,
		LocalUpdatedAt: nowFn(),
		Deleted:        false,
	}
}

// mergeRecord combines a matched local/server pair: server fields are
// authoritative except for the note's last-write-wins rule.
func mergeRecord(l LocalHighlight, s Highlight) LocalHighlight {
	out := l
	out.Highlight = s
	if s.ID != 0 {
		out.ServerID = s.ID
	}

	serverTime := s.ServerTime()
	localWins := serverTime == nil || !l.LocalUpdatedAt.Before(*serverTime)
	if localWins {
		if l.Note != "" {
			out.Note = l.Note
		}
		// A local record with no note keeps the server's.
	}
	return out
}
