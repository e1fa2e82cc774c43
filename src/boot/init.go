package boot

import (
	"log"
	"rms/src/db"
	"rms/src/lib"
	"rms/src/models"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Country{},
		&models.CountryValue{},
		&models.Location{},
		&models.LocationValue{},
		&models.Property{},
		&models.Booking{},
		&models.Notification{},
		&models.NotificationCounter{},
		&models.Token{},
		&models.PushToken{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateDurationJob(ReapExpired, 1*time.Minute)
	if err != nil {
		log.Printf("Error scheduling reaper job: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled reaper job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// ReapExpired deletes provisional records whose deadline has passed: bookings
// awaiting a payment confirmation that never came, unverified signups, and
// stale activation tokens. It stands in for the storage-level TTL index the
// schema would otherwise rely on.
func ReapExpired() {
	db := db.GetDb()
	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Unscoped().
			Where("expires_at IS NOT NULL AND expires_at < ?", now).
			Delete(&models.Booking{}).
			Error; err != nil {
			return err
		}
		var userIds []uint
		if err := tx.
			Model(&models.User{}).
			Where("expires_at IS NOT NULL AND expires_at < ? AND verified = ?", now, false).
			Pluck("id", &userIds).
			Error; err != nil {
			return err
		}
		if len(userIds) > 0 {
			if err := tx.
				Unscoped().
				Where("user_id IN (?)", userIds).
				Delete(&models.Token{}).
				Error; err != nil {
				return err
			}
			if err := tx.
				Unscoped().
				Where("id IN (?)", userIds).
				Delete(&models.User{}).
				Error; err != nil {
				return err
			}
		}
		if err := tx.
			Unscoped().
			Where("expires_at < ?", now).
			Delete(&models.Token{}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error while reaping expired records: %s\n", err.Error())
	}
}
