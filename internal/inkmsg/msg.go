package inkmsg

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Message struct {
	Id   string      `json:"id"`
	Type MessageType `json:"typ"`
	Data any         `json:"dat"`
}

// UnmarshalJSON decodes the payload into the concrete type for the message.
func (m *Message) UnmarshalJSON(data []byte) error {
	type tempMessage struct {
		Id   string          `json:"id"`
		Type MessageType     `json:"typ"`
		Data json.RawMessage `json:"dat"`
	}

	var temp tempMessage
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	m.Id = temp.Id
	m.Type = temp.Type
	if m.Id == "" {
		m.Id = uuid.NewString()
	}

	switch m.Type {
	case MsgConnected:
		var c Connected
		if err := json.Unmarshal(temp.Data, &c); err != nil {
			return err
		}
		m.Data = c
	case MsgHeartbeat:
		m.Data = nil
	case MsgContentChanged:
		var cc ContentChange
		if err := json.Unmarshal(temp.Data, &cc); err != nil {
			return err
		}
		m.Data = cc
	case MsgContentDeleted:
		var cd ContentDelete
		if err := json.Unmarshal(temp.Data, &cd); err != nil {
			return err
		}
		m.Data = cd
	case MsgDraftUpdated:
		var du DraftUpdate
		if err := json.Unmarshal(temp.Data, &du); err != nil {
			return err
		}
		m.Data = du
	default:
		return fmt.Errorf("unknown message type: %q", m.Type)
	}

	return nil
}
