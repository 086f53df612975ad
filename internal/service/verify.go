package service

import (
	"context"
	"errors"
	"strings"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

// Verifier resolves a visit token back to the visit, visitor and host.
type Verifier struct {
	store repository.Store
}

func NewVerifier(store repository.Store) *Verifier {
	return &Verifier{store: store}
}

// Verify matches token exactly; callers trim scanner input beforehand.
// Status is derived on every call.
func (v *Verifier) Verify(ctx context.Context, token string) (models.VisitDetail, error) {
	if strings.TrimSpace(token) == "" {
		return models.VisitDetail{}, apperr.Validation("qr_token required")
	}

	detail, err := v.store.Visits().FindDetailByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.VisitDetail{}, apperr.NotFound("invalid token (visit not found)")
		}
		return models.VisitDetail{}, classify(err, "failed to verify token")
	}

	detail.Status = models.DeriveStatus(detail.CheckOutAt)
	return detail, nil
}
