package amqp

import (
	"encoding/json"
	"time"
)

// InvoiceAlertMessage carries everything the alert worker needs to notify a
// user about an invoice that is about to fall due. The worker does not go
// back to the database, so the message is self-contained.
type InvoiceAlertMessage struct {
	CardID     int64     `json:"card_id"`
	CardName   string    `json:"card_name"`
	UserEmail  string    `json:"user_email"`
	UserName   string    `json:"user_name"`
	Cycle      string    `json:"cycle"`
	DueDate    string    `json:"due_date"`
	TotalCents int64     `json:"total_cents"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *InvoiceAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceAlertMessageFromJSON creates a message from JSON bytes
func InvoiceAlertMessageFromJSON(data []byte) (*InvoiceAlertMessage, error) {
	var msg InvoiceAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
