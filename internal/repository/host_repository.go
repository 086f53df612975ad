package repository

import (
	"context"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

type hostRepository struct {
	q DBTX
}

func (r *hostRepository) Create(ctx context.Context, fullName, email string, createdAt time.Time) (models.Host, error) {
	const query = `
		INSERT INTO hosts (full_name, email, is_active, created_at)
		VALUES ($1, $2, TRUE, $3)
		RETURNING id, full_name, email, is_active, created_at;
	`
	host, err := scanHost(r.q.QueryRowContext(ctx, query, fullName, email, createdAt))
	if err != nil {
		return models.Host{}, translate(err, "insert host")
	}
	return host, nil
}

func (r *hostRepository) Get(ctx context.Context, id int64) (models.Host, error) {
	const query = `
		SELECT id, full_name, email, is_active, created_at
		FROM hosts
		WHERE id = $1;
	`
	host, err := scanHost(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Host{}, translate(err, "get host")
	}
	return host, nil
}

func (r *hostRepository) List(ctx context.Context, activeOnly bool) ([]models.Host, error) {
	const query = `
		SELECT id, full_name, email, is_active, created_at
		FROM hosts
		WHERE is_active OR NOT $1
		ORDER BY id DESC;
	`
	rows, err := r.q.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, translate(err, "list hosts")
	}
	defer rows.Close()

	hosts := []models.Host{}
	for rows.Next() {
		host, err := scanHost(rows)
		if err != nil {
			return nil, translate(err, "scan host")
		}
		hosts = append(hosts, host)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list hosts")
	}
	return hosts, nil
}

func (r *hostRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE hosts SET is_active = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, active)
	if err != nil {
		return translate(err, "update host")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return translate(err, "update host")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanHost(row rowScanner) (models.Host, error) {
	var host models.Host
	err := row.Scan(&host.ID, &host.FullName, &host.Email, &host.IsActive, &host.CreatedAt)
	return host, err
}
