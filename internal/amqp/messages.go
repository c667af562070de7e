package amqp

import (
	"time"

	"github.com/goccy/go-json"
)

// Op is the kind of change a record went through.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeMessage announces that an expense or income record changed. It only
// carries identifiers; consumers fetch the record if they need it.
type ChangeMessage struct {
	Kind      string    `json:"kind"`
	Op        Op        `json:"op"`
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(kind string, op Op, id, userID int64) *ChangeMessage {
	return &ChangeMessage{
		Kind:      kind,
		Op:        op,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<kind>.<op>", e.g. "expense.created".
func (m *ChangeMessage) RoutingKey() string {
	return m.Kind + "." + string(m.Op)
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
