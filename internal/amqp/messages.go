package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a LedgerSyncMessage.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// LedgerSyncMessage is a lightweight notification that a transaction
// changed. It carries only the ID and the operation, the worker fetches
// the full row from the database when mirroring.
type LedgerSyncMessage struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(id int64, op string) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
