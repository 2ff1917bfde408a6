package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// ReportService builds the admin sales, visitor and popularity reports over
// the parks an actor may see.
type ReportService struct {
	reports repository.ReportRepository
	parks   repository.ParkRepository

	log *logrus.Logger
	now func() time.Time
	loc *time.Location
}

func NewReportService(
	reports repository.ReportRepository,
	parks repository.ParkRepository,
	log *logrus.Logger,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		reports: reports,
		parks:   parks,
		log:     log,
		now:     time.Now,
		loc:     loc,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

type SalesBucket struct {
	Key      int
	Total    int64
	Bookings int
}

type SalesReport struct {
	Period  ticketing.Period
	From    time.Time
	To      time.Time
	Total   int64
	Buckets []SalesBucket
}

// Sales sums completed payments of bookings made in the current period,
// bucketed by Period.Bucket. Empty buckets are left out.
func (s *ReportService) Sales(ctx context.Context, actor ticketing.Actor, period string) (*SalesReport, error) {
	p, scope, err := s.prepare(actor, period)
	if err != nil {
		return nil, err
	}
	from, to := p.Window(s.now(), s.loc)

	rows, err := s.reports.SalesBetween(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{Period: p, From: from, To: to, Buckets: []SalesBucket{}}
	index := map[int]int{}
	for _, r := range rows {
		key := p.Bucket(r.CreatedAt.In(s.loc))
		i, ok := index[key]
		if !ok {
			i = len(report.Buckets)
			index[key] = i
			report.Buckets = append(report.Buckets, SalesBucket{Key: key})
		}
		report.Buckets[i].Total += r.TotalAmount
		report.Buckets[i].Bookings++
		report.Total += r.TotalAmount
	}
	sort.Slice(report.Buckets, func(i, j int) bool { return report.Buckets[i].Key < report.Buckets[j].Key })
	return report, nil
}

type VisitorBucket struct {
	Key      int
	Adults   int64
	Children int64
}

type VisitorReport struct {
	Period   ticketing.Period
	From     time.Time
	To       time.Time
	Adults   int64
	Children int64
	Buckets  []VisitorBucket
}

func (r *VisitorReport) Total() int64 { return r.Adults + r.Children }

// Visitors counts the visitors of non-cancelled bookings whose visit date
// falls in the current period, bucketed by Period.DateBucket.
func (s *ReportService) Visitors(ctx context.Context, actor ticketing.Actor, period string) (*VisitorReport, error) {
	p, scope, err := s.prepare(actor, period)
	if err != nil {
		return nil, err
	}
	from, to := p.Window(s.now(), s.loc)

	rows, err := s.reports.VisitorsBetween(ctx, scope,
		ticketing.CalendarDate(from, s.loc), ticketing.CalendarDate(to, s.loc))
	if err != nil {
		return nil, err
	}

	report := &VisitorReport{Period: p, From: from, To: to, Buckets: []VisitorBucket{}}
	index := map[int]int{}
	for _, r := range rows {
		key := p.DateBucket(r.VisitDate.UTC())
		i, ok := index[key]
		if !ok {
			i = len(report.Buckets)
			index[key] = i
			report.Buckets = append(report.Buckets, VisitorBucket{Key: key})
		}
		report.Buckets[i].Adults += r.Adults
		report.Buckets[i].Children += r.Children
		report.Adults += r.Adults
		report.Children += r.Children
	}
	sort.Slice(report.Buckets, func(i, j int) bool { return report.Buckets[i].Key < report.Buckets[j].Key })
	return report, nil
}

type ParkPopularity struct {
	ParkID   uuid.UUID
	ParkName string
	Visitors int64
}

// Popularity ranks the actor's parks by visitors of non-cancelled bookings,
// most visited first.
func (s *ReportService) Popularity(ctx context.Context, actor ticketing.Actor) ([]ParkPopularity, error) {
	if err := ticketing.AuthorizeScoped(actor, ticketing.ActionViewReports); err != nil {
		return nil, err
	}
	rows, err := s.reports.VisitorsByPark(ctx, ticketing.ParkScope(actor))
	if err != nil {
		return nil, err
	}
	parks, err := s.parks.List(ctx, repository.ParkFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(parks))
	for _, p := range parks {
		names[p.ID] = p.Name
	}

	out := make([]ParkPopularity, 0, len(rows))
	for _, r := range rows {
		out = append(out, ParkPopularity{ParkID: r.ParkID, ParkName: names[r.ParkID], Visitors: r.Visitors})
	}
	return out, nil
}

func (s *ReportService) prepare(actor ticketing.Actor, period string) (ticketing.Period, []uuid.UUID, error) {
	if err := ticketing.AuthorizeScoped(actor, ticketing.ActionViewReports); err != nil {
		s.log.WithFields(logrus.Fields{
			"actor_id": actor.UserID,
			"role":     actor.Role,
		}).Warn("report denied")
		return "", nil, err
	}
	p, err := ticketing.ParsePeriod(period)
	if err != nil {
		return "", nil, err
	}
	return p, ticketing.ParkScope(actor), nil
}
