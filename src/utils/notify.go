package utils

import (
	"fmt"
	"log"
	"rms/src/config"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/lib"
	"rms/src/models"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notify appends a notification row for the user and bumps their unread
// counter with a single upsert-increment. When the user opted in, the message
// is also emailed; mail failures are logged but never fail the caller.
func Notify(user *models.User, bookingID *uint, message string) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		notification := models.Notification{
			UserID:    user.ID,
			Message:   message,
			BookingID: bookingID,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("notification_counters.count + 1")}),
			}).
			Create(&models.NotificationCounter{UserID: user.ID, Count: 1}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if user.EnableEmailNotifications {
		if err := lib.SendMail(&lib.SendMailInput{
			From:     config.SMTP_FROM,
			FromName: config.SMTP_FROM_NAME,
			To:       []string{user.Email},
			Subject:  i18n.T(user.Language, "mail_notification_subject"),
			Body:     message,
		}); err != nil {
			log.Printf("Error sending notification email to %s: %s\n", user.Email, err.Error())
		}
	}
	return nil
}

// NotifyRenter behaves like Notify and additionally pushes the message to the
// renter's mobile device when an Expo push token is on file. Push failures
// are logged and swallowed.
func NotifyRenter(renter *models.User, bookingID *uint, message string) error {
	if err := Notify(renter, bookingID, message); err != nil {
		return err
	}
	var pushToken models.PushToken
	db := db.GetDb()
	if err := db.Where(&models.PushToken{UserID: renter.ID}).First(&pushToken).Error; err != nil {
		return nil
	}
	token, err := expo.NewExponentPushToken(pushToken.Token)
	if err != nil {
		log.Printf("Invalid push token for user %d: %s\n", renter.ID, err.Error())
		return nil
	}
	data := map[string]string{}
	if bookingID != nil {
		data["bookingId"] = fmt.Sprint(*bookingID)
	}
	client := lib.GetExpoPushClient()
	response, err := client.Publish(&expo.PushMessage{
		To:       []expo.ExponentPushToken{token},
		Title:    i18n.T(renter.Language, "mail_notification_subject"),
		Body:     message,
		Data:     data,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		log.Printf("Error sending push message to user %d: %s\n", renter.ID, err.Error())
		return nil
	}
	if err := response.ValidateResponse(); err != nil {
		log.Printf("Push message to user %d was not delivered: %s\n", renter.ID, err.Error())
	}
	return nil
}

// NotifyAgencyAndAdmin fans a booking event out to the owning agency and,
// when one is configured, the platform admin account.
func NotifyAgencyAndAdmin(agency *models.User, bookingID *uint, messageKey string, args ...any) {
	if agency != nil {
		if err := Notify(agency, bookingID, i18n.T(agency.Language, messageKey, args...)); err != nil {
			log.Printf("Error notifying agency %d: %s\n", agency.ID, err.Error())
		}
	}
	if config.ADMIN_EMAIL == "" {
		return
	}
	var admin models.User
	db := db.GetDb()
	if err := db.Where(&models.User{Email: config.ADMIN_EMAIL}).First(&admin).Error; err != nil {
		return
	}
	if agency != nil && admin.ID == agency.ID {
		return
	}
	if err := Notify(&admin, bookingID, i18n.T(admin.Language, messageKey, args...)); err != nil {
		log.Printf("Error notifying admin: %s\n", err.Error())
	}
}
