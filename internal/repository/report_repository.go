package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

type reportRepository struct {
	q DBTX
}

func (r *reportRepository) History(ctx context.Context) ([]models.VisitRecord, error) {
	const query = `
		SELECT
			visits.id,
			visitors.full_name,
			visitors.company,
			visitors.phone,
			hosts.full_name,
			hosts.email,
			visits.purpose,
			visits.check_in_at,
			visits.check_out_at,
			visits.qr_token
		FROM visits
		JOIN visitors ON visitors.id = visits.visitor_id
		JOIN hosts ON hosts.id = visits.host_id
		ORDER BY visits.id DESC;
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err, "list visit history")
	}
	defer rows.Close()

	records := []models.VisitRecord{}
	for rows.Next() {
		var rec models.VisitRecord
		if err := rows.Scan(
			&rec.VisitID,
			&rec.VisitorName,
			&rec.Company,
			&rec.Phone,
			&rec.HostName,
			&rec.HostEmail,
			&rec.Purpose,
			&rec.CheckInAt,
			&rec.CheckOutAt,
			&rec.QRToken,
		); err != nil {
			return nil, translate(err, "scan visit history")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list visit history")
	}
	return records, nil
}

func (r *reportRepository) DayStats(ctx context.Context, from, to, now time.Time) (DayStats, error) {
	const query = `
		SELECT
			COUNT(*),
			AVG(EXTRACT(EPOCH FROM (COALESCE(check_out_at, $3) - check_in_at)) / 60.0)
		FROM visits
		WHERE check_in_at >= $1 AND check_in_at < $2;
	`
	var (
		stats DayStats
		avg   sql.NullFloat64
	)
	if err := r.q.QueryRowContext(ctx, query, from, to, now).Scan(&stats.Count, &avg); err != nil {
		return DayStats{}, translate(err, "daily visit stats")
	}
	if avg.Valid {
		stats.AvgMinutes = avg.Float64
	}
	return stats, nil
}
