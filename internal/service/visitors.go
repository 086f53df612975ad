package service

import (
	"context"
	"strings"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

type VisitorInput struct {
	FullName string
	Company  *string
	Phone    *string
}

// VisitorLedger appends visitor identities. Every check-in gets its own row,
// even for a returning person.
type VisitorLedger struct {
	store repository.Store
	opts  options
}

func NewVisitorLedger(store repository.Store, opts ...Option) *VisitorLedger {
	return &VisitorLedger{store: store, opts: buildOptions(opts)}
}

func (l *VisitorLedger) CreateVisitor(ctx context.Context, in VisitorInput) (models.Visitor, error) {
	return l.record(ctx, l.store, in, l.opts.clock())
}

// record inserts through store so callers can enlist the insert in their own
// transaction.
func (l *VisitorLedger) record(ctx context.Context, store repository.Store, in VisitorInput, at time.Time) (models.Visitor, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return models.Visitor{}, apperr.Validation("full_name is required")
	}

	visitor, err := store.Visitors().Create(ctx, models.Visitor{
		FullName:  fullName,
		Company:   optional(in.Company),
		Phone:     optional(in.Phone),
		CreatedAt: at,
	})
	if err != nil {
		return models.Visitor{}, classify(err, "failed to create visitor")
	}
	return visitor, nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
