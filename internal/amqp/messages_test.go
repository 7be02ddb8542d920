package amqp

import (
	"testing"
	"time"
)

func TestInvoiceAlertMessageJSON(t *testing.T) {
	msg := &InvoiceAlertMessage{
		CardID:     42,
		CardName:   "Nubank",
		UserEmail:  "maria@example.com",
		UserName:   "Maria",
		Cycle:      "2024-02",
		DueDate:    "2024-02-15",
		TotalCents: 7525,
		Timestamp:  time.Date(2024, 2, 8, 8, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := InvoiceAlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("InvoiceAlertMessageFromJSON() error = %v", err)
	}

	if parsed.CardID != msg.CardID || parsed.Cycle != msg.Cycle {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if parsed.TotalCents != 7525 || parsed.DueDate != "2024-02-15" {
		t.Errorf("parsed = %+v", parsed)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestInvoiceAlertMessageInvalidJSON(t *testing.T) {
	if _, err := InvoiceAlertMessageFromJSON([]byte(`{"card_id": "not_a_number"}`)); err == nil {
		t.Error("InvoiceAlertMessageFromJSON() should fail with invalid JSON")
	}
}
