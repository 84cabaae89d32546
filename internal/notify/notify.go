// Package notify delivers booking confirmations to the person who booked.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotify marks every delivery failure. Callers treat it as non-fatal.
var ErrNotify = errors.New("notification failed")

// Message is a confirmation addressed to one user.
type Message struct {
	Recipient       string    `json:"recipient"`
	Subject         string    `json:"subject"`
	Body            string    `json:"body"`
	ReservationID   string    `json:"reservation_id"`
	ResourceID      string    `json:"resource_id"`
	ResourceName    string    `json:"resource_name"`
	Start           string    `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	SentAt          time.Time `json:"sent_at"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Confirmation builds the message sent after a successful booking.
func Confirmation(recipient, reservationID, resourceID, resourceName, start string, durationMinutes int) Message {
	return Message{
		Recipient: recipient,
		Subject:   fmt.Sprintf("ResourceShare: %s is reserved for you", resourceName),
		Body: fmt.Sprintf("Greetings! As requested, %s is reserved for you. The reservation starts at %s and lasts %d minutes.",
			resourceName, start, durationMinutes),
		ReservationID:   reservationID,
		ResourceID:      resourceID,
		ResourceName:    resourceName,
		Start:           start,
		DurationMinutes: durationMinutes,
		SentAt:          time.Now().UTC(),
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrNotify, op, err)
}
