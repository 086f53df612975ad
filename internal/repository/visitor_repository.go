package repository

import (
	"context"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

type visitorRepository struct {
	q DBTX
}

func (r *visitorRepository) Create(ctx context.Context, visitor models.Visitor) (models.Visitor, error) {
	const query = `
		INSERT INTO visitors (full_name, company, phone, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	err := r.q.QueryRowContext(ctx, query,
		visitor.FullName,
		visitor.Company,
		visitor.Phone,
		visitor.CreatedAt,
	).Scan(&visitor.ID)
	if err != nil {
		return models.Visitor{}, translate(err, "insert visitor")
	}
	return visitor, nil
}
