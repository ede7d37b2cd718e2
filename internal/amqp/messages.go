package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// SyncMessage announces a committed local write. It carries only the
// outbox coordinates; the worker reads the current value from the database.
type SyncMessage struct {
	UserID    string    `json:"user_id"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSyncMessage(userID, entity, entityID, op string) *SyncMessage {
	return &SyncMessage{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *SyncMessage) Validate() error {
	switch {
	case m.UserID == "":
		return errors.New("sync message: missing user_id")
	case m.Entity == "":
		return errors.New("sync message: missing entity")
	case m.EntityID == "":
		return errors.New("sync message: missing entity_id")
	case m.Op == "":
		return errors.New("sync message: missing op")
	}
	return nil
}

func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
