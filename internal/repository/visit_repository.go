package repository

import (
	"context"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

type visitRepository struct {
	q DBTX
}

const visitColumns = `id, visitor_id, host_id, purpose, qr_token, check_in_at, check_out_at`

func (r *visitRepository) Create(ctx context.Context, visit models.Visit) (models.Visit, error) {
	const query = `
		INSERT INTO visits (visitor_id, host_id, purpose, qr_token, check_in_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + visitColumns + `;`

	created, err := scanVisit(r.q.QueryRowContext(ctx, query,
		visit.VisitorID,
		visit.HostID,
		visit.Purpose,
		visit.QRToken,
		visit.CheckInAt,
	))
	if err != nil {
		return models.Visit{}, translate(err, "insert visit")
	}
	return created, nil
}

func (r *visitRepository) Get(ctx context.Context, id int64) (models.Visit, error) {
	const query = `SELECT ` + visitColumns + ` FROM visits WHERE id = $1;`

	visit, err := scanVisit(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Visit{}, translate(err, "get visit")
	}
	return visit, nil
}

func (r *visitRepository) CloseIfOpen(ctx context.Context, id int64, at time.Time) (models.Visit, error) {
	const query = `
		UPDATE visits
		SET check_out_at = $2
		WHERE id = $1 AND check_out_at IS NULL
		RETURNING ` + visitColumns + `;`

	visit, err := scanVisit(r.q.QueryRowContext(ctx, query, id, at))
	if err != nil {
		return models.Visit{}, translate(err, "close visit")
	}
	return visit, nil
}

func (r *visitRepository) ListActive(ctx context.Context) ([]models.VisitSummary, error) {
	const query = `
		SELECT
			visits.id,
			visitors.full_name,
			visitors.company,
			visits.purpose,
			visits.check_in_at,
			visits.qr_token
		FROM visits
		JOIN visitors ON visitors.id = visits.visitor_id
		WHERE visits.check_out_at IS NULL
		ORDER BY visits.id DESC;
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, translate(err, "list active visits")
	}
	defer rows.Close()

	summaries := []models.VisitSummary{}
	for rows.Next() {
		var s models.VisitSummary
		if err := rows.Scan(&s.ID, &s.FullName, &s.Company, &s.Purpose, &s.CheckInAt, &s.QRToken); err != nil {
			return nil, translate(err, "scan active visit")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list active visits")
	}
	return summaries, nil
}

func (r *visitRepository) FindDetailByToken(ctx context.Context, token string) (models.VisitDetail, error) {
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
		WHERE visits.qr_token = $1;
	`
	var d models.VisitDetail
	err := r.q.QueryRowContext(ctx, query, token).Scan(
		&d.VisitID,
		&d.VisitorName,
		&d.Company,
		&d.Phone,
		&d.HostName,
		&d.HostEmail,
		&d.Purpose,
		&d.CheckInAt,
		&d.CheckOutAt,
		&d.QRToken,
	)
	if err != nil {
		return models.VisitDetail{}, translate(err, "find visit by token")
	}
	return d, nil
}

func scanVisit(row rowScanner) (models.Visit, error) {
	var v models.Visit
	err := row.Scan(&v.ID, &v.VisitorID, &v.HostID, &v.Purpose, &v.QRToken, &v.CheckInAt, &v.CheckOutAt)
	return v, err
}
