package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parkpass/ticketing/internal/db"
	"github.com/parkpass/ticketing/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return gdb
}

func seedPark(t *testing.T, gdb *gorm.DB, capacity int) *model.Park {
	t.Helper()
	district := &model.District{Name: "Bengaluru Urban " + uuid.NewString()[:8]}
	if err := gdb.Create(district).Error; err != nil {
		t.Fatalf("seed district: %v", err)
	}
	park := &model.Park{
		DistrictID: district.ID,
		Name:       "Cubbon Park",
		AdultPrice: 12000,
		ChildPrice: 5000,
		Capacity:   capacity,
		IsActive:   true,
		Features:   datatypes.NewJSONSlice([]string{"lake", "playground"}),
	}
	if err := gdb.Create(park).Error; err != nil {
		t.Fatalf("seed park: %v", err)
	}
	return park
}

var testVisitDate = time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

func seedBooking(t *testing.T, repo *GormBookingRepository, park *model.Park, ticketNo string, adults, children int) *model.Booking {
	t.Helper()
	b := &model.Booking{
		TicketNo:      ticketNo,
		ParkID:        park.ID,
		VisitDate:     datatypes.Date(testVisitDate),
		VisitorName:   "Ravi",
		VisitorEmail:  "ravi@example.com",
		Adults:        adults,
		Children:      children,
		TotalAmount:   int64(adults)*park.AdultPrice + int64(children)*park.ChildPrice,
		Status:        model.TicketStatusActive,
		PaymentStatus: model.PaymentStatusPending,
	}
	if err := repo.CreateBooking(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}
