package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type PostgresStore struct {
	db *sql.DB
	q  DBTX
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) Hosts() HostRepository       { return &hostRepository{q: s.q} }
func (s *PostgresStore) Visitors() VisitorRepository { return &visitorRepository{q: s.q} }
func (s *PostgresStore) Visits() VisitRepository     { return &visitRepository{q: s.q} }
func (s *PostgresStore) Reports() ReportRepository   { return &reportRepository{q: s.q} }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() // no-op after a successful commit

	if err := fn(&PostgresStore{db: s.db, q: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// translate maps driver failures onto the package sentinels, keeping msg as
// context for logs.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, msg)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return errors.Wrapf(ErrDuplicate, "%s: %s", msg, pqErr.Constraint)
		case pqForeignKeyViolation:
			return errors.Wrapf(ErrForeignKey, "%s: %s", msg, pqErr.Constraint)
		}
	}
	return errors.Wrap(err, msg)
}
