package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/ticketing"
)

// translate maps gorm errors onto the domain taxonomy. notFound is returned
// for gorm.ErrRecordNotFound; anything unexpected becomes a StoreError.
func translate(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return ticketing.WrapStore(op, err)
}
