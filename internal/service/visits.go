package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/notification"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

// ArrivalNotifier is told about each committed check-in.
type ArrivalNotifier interface {
	HostArrival(ctx context.Context, arrival notification.Arrival)
}

type CheckInInput struct {
	FullName string
	Company  *string
	Phone    *string
	HostID   int64
	Purpose  string
}

// maxPendingNotifications bounds in-flight arrival notifications. Arrivals
// beyond it are dropped and logged.
const maxPendingNotifications = 64

// VisitEngine creates visits together with their visitor and token, and
// moves them from ACTIVE to CHECKED_OUT exactly once.
type VisitEngine struct {
	store    repository.Store
	ledger   *VisitorLedger
	notifier ArrivalNotifier
	opts     options
	logger   zerolog.Logger
	pending  *errgroup.Group
}

func NewVisitEngine(store repository.Store, ledger *VisitorLedger, notifier ArrivalNotifier, logger zerolog.Logger, opts ...Option) *VisitEngine {
	pending := &errgroup.Group{}
	pending.SetLimit(maxPendingNotifications)
	return &VisitEngine{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		opts:     buildOptions(opts),
		logger:   logger.With().Str("component", "visit_engine").Logger(),
		pending:  pending,
	}
}

// CheckIn records a visitor and an ACTIVE visit in one transaction and
// returns the visit's token. The host only has to exist; it may have been
// disabled after the kiosk listed it.
func (e *VisitEngine) CheckIn(ctx context.Context, in CheckInInput) (models.CheckInResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Purpose = strings.TrimSpace(in.Purpose)

	var missing []string
	if in.FullName == "" {
		missing = append(missing, "full_name")
	}
	if in.HostID <= 0 {
		missing = append(missing, "host_id")
	}
	if in.Purpose == "" {
		missing = append(missing, "purpose")
	}
	if len(missing) > 0 {
		return models.CheckInResult{}, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	token := e.opts.tokens()
	now := e.opts.clock()

	var (
		host    models.Host
		visitor models.Visitor
		visit   models.Visit
	)
	err := e.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		host, err = tx.Hosts().Get(ctx, in.HostID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("host not found")
			}
			return err
		}

		visitor, err = e.ledger.record(ctx, tx, VisitorInput{
			FullName: in.FullName,
			Company:  in.Company,
			Phone:    in.Phone,
		}, now)
		if err != nil {
			return err
		}

		visit, err = tx.Visits().Create(ctx, models.Visit{
			VisitorID: visitor.ID,
			HostID:    host.ID,
			Purpose:   in.Purpose,
			QRToken:   token,
			CheckInAt: now,
		})
		switch {
		case errors.Is(err, repository.ErrForeignKey):
			return apperr.NotFound("host not found")
		case errors.Is(err, repository.ErrDuplicate):
			return apperr.Conflict("visit token already issued", err)
		}
		return err
	})
	if err != nil {
		return models.CheckInResult{}, classify(err, "failed to check in visitor")
	}

	e.opts.recorder.VisitCheckedIn()
	e.logger.Info().
		Int64("visit_id", visit.ID).
		Int64("host_id", host.ID).
		Msg("visitor checked in")

	if e.notifier != nil {
		arrival := notification.Arrival{
			VisitID:     visit.ID,
			VisitorName: visitor.FullName,
			Company:     visitor.Company,
			Purpose:     visit.Purpose,
			HostName:    host.FullName,
			HostEmail:   host.Email,
			CheckInAt:   visit.CheckInAt,
		}
		notifyCtx := context.WithoutCancel(ctx)
		started := e.pending.TryGo(func() error {
			e.notifier.HostArrival(notifyCtx, arrival)
			return nil
		})
		if !started {
			e.logger.Warn().Int64("visit_id", visit.ID).Msg("notification backlog full, arrival not sent")
		}
	}

	return models.CheckInResult{VisitID: visit.ID, Token: visit.QRToken}, nil
}

// Checkout closes an ACTIVE visit. A visit that is already closed is
// rejected and keeps its original check_out_at.
func (e *VisitEngine) Checkout(ctx context.Context, visitID int64) (models.Visit, error) {
	if visitID <= 0 {
		return models.Visit{}, apperr.NotFound("visit not found")
	}

	var closed models.Visit
	err := e.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		closed, err = tx.Visits().CloseIfOpen(ctx, visitID, e.opts.clock())
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		// Nothing was updated: tell a missing visit from a closed one.
		if _, err := tx.Visits().Get(ctx, visitID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("visit not found")
			}
			return err
		}
		return apperr.AlreadyCheckedOut(visitID)
	})
	if err != nil {
		return models.Visit{}, classify(err, "failed to check out visit")
	}

	e.opts.recorder.VisitCheckedOut()
	e.logger.Info().Int64("visit_id", visitID).Msg("visitor checked out")
	return closed, nil
}

// ListActive returns every visit without a check-out time, newest first.
func (e *VisitEngine) ListActive(ctx context.Context) ([]models.VisitSummary, error) {
	summaries, err := e.store.Visits().ListActive(ctx)
	return summaries, classify(err, "failed to list active visits")
}

// Drain waits for in-flight arrival notifications. Call it once no more
// check-ins can arrive; it gives up when ctx is done.
func (e *VisitEngine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
