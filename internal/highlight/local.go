package highlight

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the reconciliation state of a local record.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusPending SyncStatus = "pending"
	StatusFailed  SyncStatus = "failed"
)

// PendingOp names the outstanding remote operation, if any.
type PendingOp string

const (
	OpNone   PendingOp = ""
	OpCreate PendingOp = "create"
	OpUpdate PendingOp = "update"
	OpDelete PendingOp = "delete"
)

// LocalHighlight is the client-side superset of Highlight. ClientID is the
// true merge key and stays stable across the record's whole lifetime;
// ServerID mirrors Highlight.ID once known. A record pending a delete keeps
// Deleted=true and stays in the local list until the server confirms, so a
// concurrent re-fetch cannot resurrect it.
type LocalHighlight struct {
	Highlight

	ClientID       string     `json:"client_id"`
	ServerID       int64      `json:"server_id,omitempty"`
	SyncStatus     SyncStatus `json:"sync_status"`
	PendingOp      PendingOp  `json:"pending_op,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LocalUpdatedAt time.Time  `json:"local_updated_at"`
	Deleted        bool       `json:"deleted,omitempty"`
}

// nowFn is a test seam for the clock.
var nowFn = time.Now

// NewClientID returns a fresh globally-unique client identifier.
func NewClientID() string {
	return uuid.NewString()
}

// serverKey returns the record's server identity: ServerID when set,
// otherwise the embedded ID, otherwise zero.
func (h LocalHighlight) serverKey() int64 {
	if h.ServerID != 0 {
		return h.ServerID
	}
	return h.ID
}

// MarkPending returns a copy of h flagged as awaiting the given remote
// operation. LastError is cleared and LocalUpdatedAt refreshed. Deleted is
// forced true for delete operations and preserved otherwise.
func MarkPending(h LocalHighlight, op PendingOp) LocalHighlight {
	out := h
	out.SyncStatus = StatusPending
	out.PendingOp = op
	out.LastError = ""
	out.LocalUpdatedAt = nowFn()
	if op == OpDelete {
		out.Deleted = true
	}
	return out
}

// MarkSynced returns a copy of h that adopts every field of the server
// record, making the server authoritative for span, color, note and
// timestamps. Sync bookkeeping is reset to the rest state. Idempotent for
// a fixed server record.
func MarkSynced(h LocalHighlight, server Highlight) LocalHighlight {
	out := h
	out.Highlight = server
	out.ServerID = server.ID
	out.SyncStatus = StatusSynced
	out.PendingOp = OpNone
	out.LastError = ""
	out.Deleted = false
	out.LocalUpdatedAt = nowFn()
	return out
}

// MarkFailed returns a copy of h recording a failed sync attempt. PendingOp
// and Deleted are left untouched so a later retry knows what operation to
// re-attempt.
func MarkFailed(h LocalHighlight, err error) LocalHighlight {
	out := h
	out.SyncStatus = StatusFailed
	if err != nil {
		out.LastError = err.Error()
	} else {
		out.LastError = "unknown error"
	}
	out.LocalUpdatedAt = nowFn()
	return out
}

// Fingerprint returns a deterministic key "{start}:{end}:{normalized text}"
// used to correlate a local record with a server record when no server id is
// available (e.g. a local-only creation raced a creation from another
// device). It is a fallback, never the primary key.
func Fingerprint(h Highlight) string {
	text := strings.ToLower(h.HighlightedText)
	text = strings.Join(strings.Fields(text), " ")
	return fmt.Sprintf("%d:%d:%s", h.CharacterStart, h.CharacterEnd, text)
}

// ToRemote strips client-side bookkeeping from locals, producing the payload
// shape the sync push sends upstream. Tombstoned records are excluded. The
// embedded ID wins over ServerID when both are set.
func ToRemote(locals []LocalHighlight) []Highlight {
	out := make([]Highlight, 0, len(locals))
	for _, l := range locals {
		if l.Deleted {
			continue
		}
		h := l.Highlight
		if h.ID == 0 && l.ServerID != 0 {
			h.ID = l.ServerID
		}
		out = append(out, h)
	}
	return out
}
