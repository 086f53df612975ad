package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

// Storage facts returned by every adapter. Services translate them into
// apperr kinds.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrForeignKey = errors.New("foreign key violation")
)

type HostRepository interface {
	Create(ctx context.Context, fullName, email string, createdAt time.Time) (models.Host, error)
	Get(ctx context.Context, id int64) (models.Host, error)
	List(ctx context.Context, activeOnly bool) ([]models.Host, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type VisitorRepository interface {
	Create(ctx context.Context, visitor models.Visitor) (models.Visitor, error)
}

type VisitRepository interface {
	Create(ctx context.Context, visit models.Visit) (models.Visit, error)
	Get(ctx context.Context, id int64) (models.Visit, error)
	// CloseIfOpen stamps check_out_at only while it is still NULL and
	// returns ErrNotFound when no open visit with that id exists.
	CloseIfOpen(ctx context.Context, id int64, at time.Time) (models.Visit, error)
	ListActive(ctx context.Context) ([]models.VisitSummary, error)
	FindDetailByToken(ctx context.Context, token string) (models.VisitDetail, error)
}

// DayStats is the raw aggregate behind the daily stats. AvgMinutes is zero
// when Count is zero.
type DayStats struct {
	Count      int
	AvgMinutes float64
}

type ReportRepository interface {
	History(ctx context.Context) ([]models.VisitRecord, error)
	// DayStats counts visits checked in within [from, to) and averages
	// their duration, measuring open visits up to now. Both figures come
	// from one statement so they always agree.
	DayStats(ctx context.Context, from, to, now time.Time) (DayStats, error)
}

// Store is the unit of work shared by the services. Repositories obtained
// from the Store passed to fn all run inside the same transaction.
type Store interface {
	Hosts() HostRepository
	Visitors() VisitorRepository
	Visits() VisitRepository
	Reports() ReportRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
