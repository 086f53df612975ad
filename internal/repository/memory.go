package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stanstork/visitor-kiosk-api/internal/models"
)

// MemoryStore keeps all three tables in process. It enforces the same
// constraints as the SQL schema (unique email and token, foreign keys) and
// serialises transactions behind a single mutex, rolling back to a snapshot
// when the transaction function fails.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	// held is set on the view handed to WithinTx callbacks, whose caller
	// already owns mu.
	held bool
}

type memoryData struct {
	hosts         map[int64]models.Host
	visitors      map[int64]models.Visitor
	visits        map[int64]models.Visit
	emails        map[string]int64
	tokens        map[string]int64
	nextHostID    int64
	nextVisitorID int64
	nextVisitID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			hosts:    map[int64]models.Host{},
			visitors: map[int64]models.Visitor{},
			visits:   map[int64]models.Visit{},
			emails:   map[string]int64{},
			tokens:   map[string]int64{},
		},
	}
}

func (d *memoryData) clone() *memoryData {
	c := *d
	c.hosts = make(map[int64]models.Host, len(d.hosts))
	for k, v := range d.hosts {
		c.hosts[k] = v
	}
	c.visitors = make(map[int64]models.Visitor, len(d.visitors))
	for k, v := range d.visitors {
		c.visitors[k] = v
	}
	c.visits = make(map[int64]models.Visit, len(d.visits))
	for k, v := range d.visits {
		c.visits[k] = v
	}
	c.emails = make(map[string]int64, len(d.emails))
	for k, v := range d.emails {
		c.emails[k] = v
	}
	c.tokens = make(map[string]int64, len(d.tokens))
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	return &c
}

func (s *MemoryStore) lock() func() {
	if s.held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Hosts() HostRepository       { return memoryHosts{s} }
func (s *MemoryStore) Visitors() VisitorRepository { return memoryVisitors{s} }
func (s *MemoryStore) Visits() VisitRepository     { return memoryVisits{s} }
func (s *MemoryStore) Reports() ReportRepository   { return memoryReports{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.held {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(&MemoryStore{mu: s.mu, data: s.data, held: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

type memoryHosts struct{ s *MemoryStore }

func (r memoryHosts) Create(_ context.Context, fullName, email string, createdAt time.Time) (models.Host, error) {
	defer r.s.lock()()
	d := r.s.data

	if _, taken := d.emails[email]; taken {
		return models.Host{}, ErrDuplicate
	}
	d.nextHostID++
	host := models.Host{
		ID:        d.nextHostID,
		FullName:  fullName,
		Email:     email,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	d.hosts[host.ID] = host
	d.emails[email] = host.ID
	return host, nil
}

func (r memoryHosts) Get(_ context.Context, id int64) (models.Host, error) {
	defer r.s.lock()()

	host, ok := r.s.data.hosts[id]
	if !ok {
		return models.Host{}, ErrNotFound
	}
	return host, nil
}

func (r memoryHosts) List(_ context.Context, activeOnly bool) ([]models.Host, error) {
	defer r.s.lock()()

	hosts := []models.Host{}
	for _, h := range r.s.data.hosts {
		if activeOnly && !h.IsActive {
			continue
		}
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID > hosts[j].ID })
	return hosts, nil
}

func (r memoryHosts) SetActive(_ context.Context, id int64, active bool) error {
	defer r.s.lock()()

	host, ok := r.s.data.hosts[id]
	if !ok {
		return ErrNotFound
	}
	host.IsActive = active
	r.s.data.hosts[id] = host
	return nil
}

type memoryVisitors struct{ s *MemoryStore }

func (r memoryVisitors) Create(_ context.Context, visitor models.Visitor) (models.Visitor, error) {
	defer r.s.lock()()
	d := r.s.data

	d.nextVisitorID++
	visitor.ID = d.nextVisitorID
	d.visitors[visitor.ID] = visitor
	return visitor, nil
}

type memoryVisits struct{ s *MemoryStore }

func (r memoryVisits) Create(_ context.Context, visit models.Visit) (models.Visit, error) {
	defer r.s.lock()()
	d := r.s.data

	if _, ok := d.visitors[visit.VisitorID]; !ok {
		return models.Visit{}, ErrForeignKey
	}
	if _, ok := d.hosts[visit.HostID]; !ok {
		return models.Visit{}, ErrForeignKey
	}
	if _, taken := d.tokens[visit.QRToken]; taken {
		return models.Visit{}, ErrDuplicate
	}
	d.nextVisitID++
	visit.ID = d.nextVisitID
	visit.CheckOutAt = nil
	d.visits[visit.ID] = visit
	d.tokens[visit.QRToken] = visit.ID
	return visit, nil
}

func (r memoryVisits) Get(_ context.Context, id int64) (models.Visit, error) {
	defer r.s.lock()()

	visit, ok := r.s.data.visits[id]
	if !ok {
		return models.Visit{}, ErrNotFound
	}
	return visit, nil
}

func (r memoryVisits) CloseIfOpen(_ context.Context, id int64, at time.Time) (models.Visit, error) {
	defer r.s.lock()()

	visit, ok := r.s.data.visits[id]
	if !ok || visit.CheckOutAt != nil {
		return models.Visit{}, ErrNotFound
	}
	closedAt := at
	visit.CheckOutAt = &closedAt
	r.s.data.visits[id] = visit
	return visit, nil
}

func (r memoryVisits) ListActive(_ context.Context) ([]models.VisitSummary, error) {
	defer r.s.lock()()
	d := r.s.data

	summaries := []models.VisitSummary{}
	for _, v := range d.sortedVisits() {
		if v.CheckOutAt != nil {
			continue
		}
		visitor := d.visitors[v.VisitorID]
		summaries = append(summaries, models.VisitSummary{
			ID:        v.ID,
			FullName:  visitor.FullName,
			Company:   visitor.Company,
			Purpose:   v.Purpose,
			CheckInAt: v.CheckInAt,
			QRToken:   v.QRToken,
		})
	}
	return summaries, nil
}

func (r memoryVisits) FindDetailByToken(_ context.Context, token string) (models.VisitDetail, error) {
	defer r.s.lock()()
	d := r.s.data

	id, ok := d.tokens[token]
	if !ok {
		return models.VisitDetail{}, ErrNotFound
	}
	rec := d.record(d.visits[id])
	return models.VisitDetail{
		VisitID:     rec.VisitID,
		VisitorName: rec.VisitorName,
		Company:     rec.Company,
		Phone:       rec.Phone,
		HostName:    rec.HostName,
		HostEmail:   rec.HostEmail,
		Purpose:     rec.Purpose,
		CheckInAt:   rec.CheckInAt,
		CheckOutAt:  rec.CheckOutAt,
		QRToken:     rec.QRToken,
	}, nil
}

type memoryReports struct{ s *MemoryStore }

func (r memoryReports) History(_ context.Context) ([]models.VisitRecord, error) {
	defer r.s.lock()()
	d := r.s.data

	records := []models.VisitRecord{}
	for _, v := range d.sortedVisits() {
		records = append(records, d.record(v))
	}
	return records, nil
}

func (r memoryReports) DayStats(_ context.Context, from, to, now time.Time) (DayStats, error) {
	defer r.s.lock()()

	var (
		stats DayStats
		total float64
	)
	for _, v := range r.s.data.visits {
		if !inRange(v.CheckInAt, from, to) {
			continue
		}
		end := now
		if v.CheckOutAt != nil {
			end = *v.CheckOutAt
		}
		total += end.Sub(v.CheckInAt).Minutes()
		stats.Count++
	}
	if stats.Count > 0 {
		stats.AvgMinutes = total / float64(stats.Count)
	}
	return stats, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (d *memoryData) sortedVisits() []models.Visit {
	visits := make([]models.Visit, 0, len(d.visits))
	for _, v := range d.visits {
		visits = append(visits, v)
	}
	sort.Slice(visits, func(i, j int) bool { return visits[i].ID > visits[j].ID })
	return visits
}

func (d *memoryData) record(v models.Visit) models.VisitRecord {
	visitor := d.visitors[v.VisitorID]
	host := d.hosts[v.HostID]
	return models.VisitRecord{
		VisitID:     v.ID,
		VisitorName: visitor.FullName,
		Company:     visitor.Company,
		Phone:       visitor.Phone,
		HostName:    host.FullName,
		HostEmail:   host.Email,
		Purpose:     v.Purpose,
		CheckInAt:   v.CheckInAt,
		CheckOutAt:  v.CheckOutAt,
		QRToken:     v.QRToken,
	}
}
