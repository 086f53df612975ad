package service

import (
	"context"
	"math"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

// ReportService projects the visit log for history, stats and exports.
type ReportService struct {
	store    repository.Store
	location *time.Location
	opts     options
}

func NewReportService(store repository.Store, location *time.Location, opts ...Option) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{store: store, location: location, opts: buildOptions(opts)}
}

// History returns every visit, newest first.
func (s *ReportService) History(ctx context.Context) ([]models.VisitRecord, error) {
	records, err := s.store.Reports().History(ctx)
	if err != nil {
		return nil, classify(err, "failed to load visit history")
	}
	for i := range records {
		records[i].Status = models.DeriveStatus(records[i].CheckOutAt)
	}
	return records, nil
}

// Stats counts today's check-ins and averages their duration, measuring
// open visits up to now. "Today" is the calendar day in the configured
// location.
func (s *ReportService) Stats(ctx context.Context) (models.VisitStats, error) {
	now := s.opts.clock()
	local := now.In(s.location)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	to := from.AddDate(0, 0, 1)

	day, err := s.store.Reports().DayStats(ctx, from, to, now)
	if err != nil {
		return models.VisitStats{}, classify(err, "failed to compute stats")
	}

	return models.VisitStats{
		VisitorsToday:           day.Count,
		AvgVisitDurationMinutes: math.Round(day.AvgMinutes*10) / 10,
	}, nil
}
