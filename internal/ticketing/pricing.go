package ticketing

import (
	"math"

	"github.com/parkpass/ticketing/internal/model"
)

// Currency of every amount in the system. Amounts are int64 minor units, so
// two-decimal rounding is exact by construction.
const (
	Currency        = "INR"
	MinorUnitsScale = 100
)

// ComputeTotal returns adults*AdultPrice + children*ChildPrice in minor units.
// It is the only place a booking total is computed; price previews call it too.
func ComputeTotal(park *model.Park, adults, children int) (int64, error) {
	if err := CheckPartySize(adults, children); err != nil {
		return 0, err
	}
	if park == nil {
		return 0, fieldErr("park", ErrInvalidPriceConfiguration, "missing park rates")
	}
	if park.AdultPrice < 0 {
		return 0, fieldErr("adultPrice", ErrInvalidPriceConfiguration, "negative price")
	}
	if park.ChildPrice < 0 {
		return 0, fieldErr("childPrice", ErrInvalidPriceConfiguration, "negative price")
	}

	adultTotal, ok := mulAmount(park.AdultPrice, adults)
	if !ok {
		return 0, fieldErr("adultPrice", ErrInvalidPriceConfiguration, "amount overflow")
	}
	childTotal, ok := mulAmount(park.ChildPrice, children)
	if !ok {
		return 0, fieldErr("childPrice", ErrInvalidPriceConfiguration, "amount overflow")
	}
	if adultTotal > math.MaxInt64-childTotal {
		return 0, fieldErr("totalAmount", ErrInvalidPriceConfiguration, "amount overflow")
	}
	return adultTotal + childTotal, nil
}

// CheckPartySize enforces adults >= 0, children >= 0 and adults+children >= 1.
func CheckPartySize(adults, children int) error {
	if adults < 0 {
		return fieldErr("adults", ErrInvalidPartySize, "must not be negative")
	}
	if children < 0 {
		return fieldErr("children", ErrInvalidPartySize, "must not be negative")
	}
	if adults == 0 && children == 0 {
		return fieldErr("partySize", ErrInvalidPartySize, "at least one visitor required")
	}
	return nil
}

func mulAmount(price int64, count int) (int64, bool) {
	if count == 0 || price == 0 {
		return 0, true
	}
	n := int64(count)
	if price > math.MaxInt64/n {
		return 0, false
	}
	return price * n, true
}
