package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stanstork/visitor-kiosk-api/internal/apperr"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

// HostRegistry owns host records and their active flag. Hosts are never
// deleted so past visits always join to a host row.
type HostRegistry struct {
	store  repository.Store
	opts   options
	logger zerolog.Logger
}

func NewHostRegistry(store repository.Store, logger zerolog.Logger, opts ...Option) *HostRegistry {
	return &HostRegistry{
		store:  store,
		opts:   buildOptions(opts),
		logger: logger.With().Str("component", "host_registry").Logger(),
	}
}

// CreateHost registers an active host. Emails are compared case-sensitively
// after trimming surrounding whitespace.
func (r *HostRegistry) CreateHost(ctx context.Context, fullName, email string) (models.Host, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return models.Host{}, apperr.Validation("full_name and email required")
	}

	host, err := r.store.Hosts().Create(ctx, fullName, email, r.opts.clock())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Host{}, apperr.Conflict("a host with this email already exists", err)
		}
		return models.Host{}, classify(err, "failed to create host")
	}

	r.opts.recorder.HostCreated()
	r.logger.Info().Int64("host_id", host.ID).Msg("host created")
	return host, nil
}

// ListActiveHosts returns the hosts a visitor may select, newest first.
func (r *HostRegistry) ListActiveHosts(ctx context.Context) ([]models.Host, error) {
	hosts, err := r.store.Hosts().List(ctx, true)
	return hosts, classify(err, "failed to list hosts")
}

func (r *HostRegistry) ListAllHosts(ctx context.Context) ([]models.Host, error) {
	hosts, err := r.store.Hosts().List(ctx, false)
	return hosts, classify(err, "failed to list hosts")
}

// SetActive enables or disables a host. Repeating the current state is not
// an error. Existing visits are unaffected.
func (r *HostRegistry) SetActive(ctx context.Context, hostID int64, active bool) error {
	if hostID <= 0 {
		return apperr.NotFound("host not found")
	}
	if err := r.store.Hosts().SetActive(ctx, hostID, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("host not found")
		}
		return classify(err, "failed to update host")
	}
	r.logger.Info().Int64("host_id", hostID).Bool("is_active", active).Msg("host status changed")
	return nil
}
