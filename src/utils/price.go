package utils

import (
	"fmt"
	"math"
	"rms/src/models"
	"rms/src/types"
	"time"
)

// BookingDays returns the day span of a rental period. A started day counts
// as a full day.
func BookingDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	if time.Date(year, time.February, 29, 0, 0, 0, 0, time.UTC).Day() == 29 {
		return 366
	}
	return 365
}

// BookingPrice computes the total price of a booking from the property's
// rental term and the day span. Month and year length normalization uses the
// booking's own start date, and the cancellation-protection fee is added when
// the renter opted in and the property offers it.
func BookingPrice(property *models.Property, from, to time.Time, cancellation bool) (float64, error) {
	days := BookingDays(from, to)
	var price float64
	switch property.RentalTerm {
	case types.RENTAL_TERM_DAILY:
		price = property.Price * float64(days)
	case types.RENTAL_TERM_WEEKLY:
		price = property.Price * float64(days) / 7
	case types.RENTAL_TERM_MONTHLY:
		price = property.Price * float64(days) / float64(daysInMonth(from.Year(), from.Month()))
	case types.RENTAL_TERM_YEARLY:
		price = property.Price * float64(days) / float64(daysInYear(from.Year()))
	default:
		return 0, fmt.Errorf("unknown rental term: %s", property.RentalTerm)
	}
	if cancellation && property.Cancellation > 0 {
		price += property.Cancellation
	}
	return price, nil
}
