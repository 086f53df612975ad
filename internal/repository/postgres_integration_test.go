//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/stanstork/visitor-kiosk-api/internal/migration"
	"github.com/stanstork/visitor-kiosk-api/internal/models"
	"github.com/stanstork/visitor-kiosk-api/internal/repository"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	store     *repository.PostgresStore
	ctx       context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("kiosk"),
		tcpostgres.WithUsername("kiosk"),
		tcpostgres.WithPassword("kiosk"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(s.db.PingContext(s.ctx))
	s.Require().NoError(migration.Up(s.ctx, s.db, zerolog.Nop()))

	s.store = repository.NewPostgresStore(s.db)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminate postgres container: %v", err)
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE visits, visitors, hosts RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedVisit(hostID int64, token string, at time.Time) models.Visit {
	var visit models.Visit
	err := s.store.WithinTx(s.ctx, func(tx repository.Store) error {
		visitor, err := tx.Visitors().Create(s.ctx, models.Visitor{FullName: "Ana", CreatedAt: at})
		if err != nil {
			return err
		}
		visit, err = tx.Visits().Create(s.ctx, models.Visit{
			VisitorID: visitor.ID,
			HostID:    hostID,
			Purpose:   "Meeting",
			QRToken:   token,
			CheckInAt: at,
		})
		return err
	})
	s.Require().NoError(err)
	return visit
}

// TestConcurrentDuplicateEmail verifies that exactly one of many concurrent
// inserts with the same email wins.
func (s *PostgresStoreSuite) TestConcurrentDuplicateEmail() {
	const goroutines = 20
	var wg sync.WaitGroup
	var ok, dup atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Hosts().Create(s.ctx, "Grace", "grace@example.com", time.Now().UTC())
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, repository.ErrDuplicate):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), ok.Load())
	s.Equal(int32(goroutines-1), dup.Load())

	hosts, err := s.store.Hosts().List(s.ctx, false)
	s.Require().NoError(err)
	s.Len(hosts, 1)
}

// TestCheckInRollsBackVisitor verifies that a failed visit insert leaves no
// orphan visitor behind.
func (s *PostgresStoreSuite) TestCheckInRollsBackVisitor() {
	err := s.store.WithinTx(s.ctx, func(tx repository.Store) error {
		visitor, err := tx.Visitors().Create(s.ctx, models.Visitor{FullName: "Ana", CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		_, err = tx.Visits().Create(s.ctx, models.Visit{
			VisitorID: visitor.ID,
			HostID:    404,
			Purpose:   "Meeting",
			QRToken:   uuid.NewString(),
			CheckInAt: time.Now().UTC(),
		})
		return err
	})
	s.ErrorIs(err, repository.ErrForeignKey)

	var visitors int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT COUNT(*) FROM visitors`).Scan(&visitors))
	s.Zero(visitors)
}

func (s *PostgresStoreSuite) TestDuplicateToken() {
	host, err := s.store.Hosts().Create(s.ctx, "Host", "host@example.com", time.Now().UTC())
	s.Require().NoError(err)
	s.seedVisit(host.ID, "same-token", time.Now().UTC())

	err = s.store.WithinTx(s.ctx, func(tx repository.Store) error {
		visitor, err := tx.Visitors().Create(s.ctx, models.Visitor{FullName: "Bob", CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		_, err = tx.Visits().Create(s.ctx, models.Visit{VisitorID: visitor.ID, HostID: host.ID, Purpose: "x", QRToken: "same-token", CheckInAt: time.Now().UTC()})
		return err
	})
	s.ErrorIs(err, repository.ErrDuplicate)
}

func (s *PostgresStoreSuite) TestCloseIfOpenAndDetail() {
	host, err := s.store.Hosts().Create(s.ctx, "Host", "host@example.com", time.Now().UTC())
	s.Require().NoError(err)
	checkIn := time.Now().UTC().Truncate(time.Microsecond)
	visit := s.seedVisit(host.ID, "tok", checkIn)

	s.Require().NoError(s.store.Hosts().SetActive(s.ctx, host.ID, false))

	closedAt := checkIn.Add(time.Minute)
	closed, err := s.store.Visits().CloseIfOpen(s.ctx, visit.ID, closedAt)
	s.Require().NoError(err)
	s.Require().NotNil(closed.CheckOutAt)
	s.True(closed.CheckOutAt.Equal(closedAt))

	_, err = s.store.Visits().CloseIfOpen(s.ctx, visit.ID, closedAt.Add(time.Hour))
	s.ErrorIs(err, repository.ErrNotFound)

	detail, err := s.store.Visits().FindDetailByToken(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal("host@example.com", detail.HostEmail)
	s.Require().NotNil(detail.CheckOutAt)
	s.True(detail.CheckOutAt.Equal(closedAt))

	active, err := s.store.Visits().ListActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *PostgresStoreSuite) TestStatsQueries() {
	host, err := s.store.Hosts().Create(s.ctx, "Host", "host@example.com", time.Now().UTC())
	s.Require().NoError(err)

	dayStart := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	v := s.seedVisit(host.ID, "a", dayStart.Add(9*time.Hour))
	_, err = s.store.Visits().CloseIfOpen(s.ctx, v.ID, dayStart.Add(9*time.Hour+20*time.Minute))
	s.Require().NoError(err)
	s.seedVisit(host.ID, "b", dayStart.Add(-2*time.Hour))

	stats, err := s.store.Reports().DayStats(s.ctx, dayStart, dayStart.Add(24*time.Hour), dayStart.Add(12*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, stats.Count)
	s.InDelta(20.0, stats.AvgMinutes, 0.01)

	empty, err := s.store.Reports().DayStats(s.ctx, dayStart.AddDate(0, 0, 1), dayStart.AddDate(0, 0, 2), dayStart)
	s.Require().NoError(err)
	s.Equal(repository.DayStats{}, empty)
}
