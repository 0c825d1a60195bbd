package amqp

import (
	"encoding/json"
	"time"
)

// CashFlowEvent announces a change to the cash flow store. Consumers
// re-read the record by ID; reseed events carry no ID.
type CashFlowEvent struct {
	Event     string    `json:"event"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCashFlowEvent(event, id string) *CashFlowEvent {
	return &CashFlowEvent{
		Event:     event,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CashFlowEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CashFlowEventFromJSON decodes a message body.
func CashFlowEventFromJSON(data []byte) (*CashFlowEvent, error) {
	var msg CashFlowEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
