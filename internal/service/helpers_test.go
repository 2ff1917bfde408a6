package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parkpass/ticketing/internal/db"
	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/ticketing"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	tickets *TicketService
	catalog *CatalogService
	auth    *AuthService
	reports *ReportService

	gdb      *gorm.DB
	bookings *repository.GormBookingRepository
	events   *repository.GormEventRepository

	district *model.District
	park     *model.Park // Cubbon Park: 12000 / 5000 paise, capacity 10
	other    *model.Park

	superAdmin ticketing.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite("file:"+uuid.NewString()+"?mode=memory&cache=shared",
		gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { sqlDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	parks := repository.NewGormParkRepository(gdb)
	districts := repository.NewGormDistrictRepository(gdb)
	bookings := repository.NewGormBookingRepository(gdb)
	events := repository.NewGormEventRepository(gdb)
	users := repository.NewGormUserRepository(gdb)

	env := &testEnv{
		tickets:    NewTicketService(parks, bookings, events, log, time.UTC).WithClock(func() time.Time { return testNow }),
		catalog:    NewCatalogService(districts, parks, bookings, log),
		auth:       NewAuthService(users, parks, "test-secret", time.Hour, log).WithBcryptCost(bcrypt.MinCost),
		reports:    NewReportService(bookings, parks, log, time.UTC).WithClock(func() time.Time { return testNow }),
		gdb:        gdb,
		bookings:   bookings,
		events:     events,
		superAdmin: ticketing.Actor{UserID: uuid.New(), Role: ticketing.RoleSuperAdmin},
	}

	ctx := context.Background()
	env.district, err = env.catalog.CreateDistrict(ctx, env.superAdmin, DistrictInput{Name: "Bengaluru Urban"})
	if err != nil {
		t.Fatalf("create district: %v", err)
	}
	env.park, err = env.catalog.CreatePark(ctx, env.superAdmin, ParkInput{
		DistrictID: env.district.ID,
		Name:       "Cubbon Park",
		AdultPrice: 12000,
		ChildPrice: 5000,
		Capacity:   10,
		Features:   []string{"lake", " playground ", ""},
	})
	if err != nil {
		t.Fatalf("create park: %v", err)
	}
	env.other, err = env.catalog.CreatePark(ctx, env.superAdmin, ParkInput{
		DistrictID: env.district.ID,
		Name:       "Lalbagh",
		AdultPrice: 3000,
		ChildPrice: 1000,
		Capacity:   500,
	})
	if err != nil {
		t.Fatalf("create park: %v", err)
	}
	return env
}

func (e *testEnv) book(t *testing.T, park *model.Park, adults, children int) *model.Booking {
	t.Helper()
	b, err := e.tickets.CreateBooking(context.Background(), ticketing.BookingRequest{
		ParkID:       park.ID,
		VisitDate:    "2026-10-25",
		VisitorName:  "Ananya Rao",
		VisitorEmail: "ananya@example.com",
		VisitorPhone: "+91 98450 00000",
		Adults:       adults,
		Children:     children,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func checker(parks ...*model.Park) ticketing.Actor {
	ids := make([]uuid.UUID, 0, len(parks))
	for _, p := range parks {
		ids = append(ids, p.ID)
	}
	return ticketing.Actor{UserID: uuid.New(), Role: ticketing.RoleTicketChecker, AssignedParks: ids}
}

func parkAdmin(parks ...*model.Park) ticketing.Actor {
	a := checker(parks...)
	a.Role = ticketing.RoleParkAdmin
	return a
}
