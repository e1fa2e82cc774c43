package common

import (
	"log"
	"rms/src/db"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"

	"gorm.io/gorm"
)

// ConfirmBooking promotes a provisional booking to Paid: the status update
// and the clearing of the expiry deadline happen in a single guarded UPDATE
// so that repeated confirmation polls cannot promote (or re-notify) twice.
// promoted is false when no provisional row matched.
func ConfirmBooking(bookingID uint) (booking *models.Booking, promoted bool, err error) {
	var b models.Booking
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND expires_at IS NOT NULL", bookingID).
			Updates(map[string]any{
				"status":     types.BOOKING_PAID,
				"expires_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		promoted = true
		if err := tx.
			Preload("Agency").
			Preload("Renter").
			Preload("Property").
			First(&b, bookingID).
			Error; err != nil {
			return err
		}
		if b.RenterID != nil {
			if err := tx.
				Model(&models.User{}).
				Where("id = ?", *b.RenterID).
				Update("expires_at", nil).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || !promoted {
		return nil, false, err
	}
	return &b, true, nil
}

// NotifyBookingConfirmed sends the renter their confirmation email and fans
// the event out to the agency and platform admin. Mail and notification
// failures are logged; the booking is already persisted at this point.
func NotifyBookingConfirmed(booking *models.Booking) {
	propertyName := ""
	if booking.Property != nil {
		propertyName = booking.Property.Name
	}
	renterName := ""
	if booking.Renter != nil {
		renterName = booking.Renter.FullName
		if err := utils.SendBookingConfirmationEmail(booking.Renter, booking, propertyName); err != nil {
			log.Printf("Error sending confirmation email for booking %d: %s\n", booking.ID, err.Error())
		}
	}
	utils.NotifyAgencyAndAdmin(booking.Agency, &booking.ID, "notification_booking_created", renterName, propertyName)
}
