package inkmsg

type MessageType string

const (
	MsgConnected      MessageType = "connected"
	MsgHeartbeat      MessageType = "heartbeat"
	MsgContentChanged MessageType = "content-changed"
	MsgContentDeleted MessageType = "content-deleted"
	MsgDraftUpdated   MessageType = "draft-updated"
)

// IsChange reports whether the message signals a remote content change
// that should schedule a re-sync.
func (t MessageType) IsChange() bool {
	switch t {
	case MsgContentChanged, MsgContentDeleted, MsgDraftUpdated:
		return true
	default:
		return false
	}
}
