package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Arrival describes a visitor who has just checked in to see a host.
type Arrival struct {
	VisitID     int64
	VisitorName string
	Company     *string
	Purpose     string
	HostName    string
	HostEmail   string
	CheckInAt   time.Time
}

type Notifier interface {
	Notify(ctx context.Context, arrival Arrival) error
}

func logNotifyError(logger zerolog.Logger, err error, channel string, arrival Arrival) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Int64("visit_id", arrival.VisitID).
		Str("channel", channel).
		Msg("failed to deliver arrival notification")
}
