package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes confirmations to the application log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.InfoContext(ctx, "reservation confirmation",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"reservation_id", msg.ReservationID,
		"resource_id", msg.ResourceID,
	)
	return nil
}
