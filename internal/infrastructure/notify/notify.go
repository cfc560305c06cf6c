package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/corebank/bankd/internal/domain"
)

// LogNotifier implements usecase.Notifier by writing structured log
// events. It stands in for a mail or SMS gateway; the ledger only
// requires that sends never fail the triggering transaction.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// Send emits the notification as a log event.
func (n *LogNotifier) Send(ctx context.Context, ownerID, subject, body string, severity domain.Severity) {
	event := n.logger.Info()
	if severity == domain.SeverityAlert {
		event = n.logger.Warn()
	}

	event.
		Str("owner_id", ownerID).
		Str("subject", subject).
		Str("severity", string(severity)).
		Msg(body)
}
