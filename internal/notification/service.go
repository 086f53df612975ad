package notification

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Service fans an arrival out to every configured notifier. Delivery is
// best-effort: failures are logged and never reach the caller.
type Service interface {
	HostArrival(ctx context.Context, arrival Arrival)
}

type service struct {
	logger    zerolog.Logger
	notifiers []Notifier
}

func NewService(logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
	}
}

func (s *service) HostArrival(ctx context.Context, arrival Arrival) {
	if strings.TrimSpace(arrival.HostEmail) == "" {
		s.logger.Debug().Int64("visit_id", arrival.VisitID).Msg("host has no email, skipping notification")
		return
	}
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, arrival); err != nil {
			logNotifyError(s.logger, err, notifierChannelName(notifier), arrival)
		}
	}
}

// Subject is the one-line summary shared by every channel.
func Subject(a Arrival) string {
	return fmt.Sprintf("Your visitor %s has arrived", singleLine(a.VisitorName))
}

// Message is the plain text body shared by every channel.
func Message(a Arrival) string {
	who := singleLine(a.VisitorName)
	if a.Company != nil && singleLine(*a.Company) != "" {
		who = fmt.Sprintf("%s from %s", who, singleLine(*a.Company))
	}
	return fmt.Sprintf("%s has arrived for %s.", who, singleLine(a.Purpose))
}

// singleLine turns control characters, CR and LF included, into spaces and
// collapses runs of whitespace.
func singleLine(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func notifierChannelName(n Notifier) string {
	type named interface {
		String() string
	}
	if v, ok := n.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
