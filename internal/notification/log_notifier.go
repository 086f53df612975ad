package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes arrivals to the application log. It is the fallback
// channel when email delivery is not configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("notifier", "log").Logger()}
}

func (n *LogNotifier) Notify(_ context.Context, arrival Arrival) error {
	n.logger.Info().
		Int64("visit_id", arrival.VisitID).
		Str("host_email", arrival.HostEmail).
		Msg(Message(arrival))
	return nil
}

func (n *LogNotifier) String() string {
	return "LogNotifier"
}
