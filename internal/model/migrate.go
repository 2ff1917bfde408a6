package model

import "gorm.io/gorm"

// AutoMigrate migrates every ParkPass entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&District{},
		&Park{},
		&User{},
		&Booking{},
		&TicketEvent{},
	)
}
