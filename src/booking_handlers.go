package main

import (
	"fmt"
	"log"
	"net/http"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/create-booking", func(ctx *gin.Context) {
			var body types.BookingDraft
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			from, err := utils.ParseBookingDate(body.From)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			to, err := utils.ParseBookingDate(body.To)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var booking models.Booking
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				var property models.Property
				if err := tx.First(&property, body.PropertyID).Error; err != nil {
					return err
				}
				price := body.Price
				if price == 0 {
					price, err = utils.BookingPrice(&property, from, to, body.Cancellation)
					if err != nil {
						return err
					}
				}
				status := body.Status
				if status == "" {
					status = types.BOOKING_PENDING
				}
				booking = models.Booking{
					AgencyID:     body.AgencyID,
					PropertyID:   body.PropertyID,
					LocationID:   body.LocationID,
					From:         from,
					To:           to,
					Status:       status,
					Price:        price,
					Cancellation: body.Cancellation,
				}
				if body.RenterID > 0 {
					booking.RenterID = &body.RenterID
				}
				return tx.Create(&booking).Error
			})
			if err != nil {
				log.Printf("Error creating booking: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"bookingId": booking.ID})
		}).
		PUT("/update-booking", func(ctx *gin.Context) {
			var body types.BookingDraft
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if body.ID == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "booking id is required"})
				return
			}
			from, err := utils.ParseBookingDate(body.From)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			to, err := utils.ParseBookingDate(body.To)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var statusChanged bool
			var booking models.Booking
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				if err := tx.First(&booking, body.ID).Error; err != nil {
					return err
				}
				statusChanged = body.Status != "" && body.Status != booking.Status
				updates := map[string]any{
					"agency_id":    body.AgencyID,
					"property_id":  body.PropertyID,
					"location_id":  body.LocationID,
					"from":         from,
					"to":           to,
					"cancellation": body.Cancellation,
				}
				if body.RenterID > 0 {
					updates["renter_id"] = body.RenterID
				}
				if body.Status != "" {
					updates["status"] = body.Status
				}
				if body.Price > 0 {
					updates["price"] = body.Price
				}
				if err := tx.
					Model(&models.Booking{}).
					Where("id = ?", body.ID).
					Updates(updates).
					Error; err != nil {
					return err
				}
				return tx.Preload("Renter").First(&booking, body.ID).Error
			})
			if err != nil {
				log.Printf("Error updating booking %d: %s\n", body.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if statusChanged && booking.Renter != nil {
				message := i18n.T(booking.Renter.Language, "notification_booking_status", booking.ID, string(booking.Status))
				if err := utils.NotifyRenter(booking.Renter, &booking.ID, message); err != nil {
					log.Printf("Error notifying renter %d: %s\n", booking.Renter.ID, err.Error())
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/update-booking-status", func(ctx *gin.Context) {
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var bookings []models.Booking
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Preload("Renter").
					Where("id IN (?) AND status <> ?", body.IDs, body.Status).
					Find(&bookings).
					Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Booking{}).
					Where("id IN (?)", body.IDs).
					Update("status", body.Status).
					Error
			})
			if err != nil {
				log.Printf("Error updating booking statuses: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			for _, booking := range bookings {
				if booking.Renter == nil {
					continue
				}
				message := i18n.T(booking.Renter.Language, "notification_booking_status", booking.ID, string(body.Status))
				if err := utils.NotifyRenter(booking.Renter, &booking.ID, message); err != nil {
					log.Printf("Error notifying renter %d: %s\n", booking.Renter.ID, err.Error())
				}
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/delete-bookings", func(ctx *gin.Context) {
			var body types.DeleteBookingsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Unscoped().
					Where("booking_id IN (?)", body.IDs).
					Delete(&models.Notification{}).
					Error; err != nil {
					return err
				}
				return tx.
					Unscoped().
					Where("id IN (?)", body.IDs).
					Delete(&models.Booking{}).
					Error
			})
			if err != nil {
				log.Printf("Error deleting bookings: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/cancel-booking/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var booking models.Booking
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Preload("Agency").
					Preload("Renter").
					First(&booking, params.ID).
					Error; err != nil {
					return err
				}
				if booking.CancelRequest {
					return fmt.Errorf("cancellation already requested for booking %d", booking.ID)
				}
				return tx.
					Model(&models.Booking{}).
					Where("id = ?", booking.ID).
					Update("cancel_request", true).
					Error
			})
			if err != nil {
				log.Printf("Error cancelling booking %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			renterName := ""
			if booking.Renter != nil {
				renterName = booking.Renter.FullName
			}
			utils.NotifyAgencyAndAdmin(booking.Agency, &booking.ID, "notification_booking_cancel", renterName, booking.ID)
			ctx.Status(http.StatusOK)
		}).
		POST("/bookings/:page/:size/:language", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var filters types.BookingQueryFilters
			if err := ctx.ShouldBindJSON(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Booking{})
			if len(filters.Agencies) > 0 {
				q = q.Where("bookings.agency_id IN (?)", filters.Agencies)
			}
			if len(filters.Statuses) > 0 {
				q = q.Where("bookings.status IN (?)", filters.Statuses)
			}
			if filters.PropertyID > 0 {
				q = q.Where("bookings.property_id = ?", filters.PropertyID)
			}
			if filters.From != nil {
				q = q.Where("bookings.\"from\" >= ?", *filters.From)
			}
			if filters.To != nil {
				q = q.Where("bookings.\"to\" <= ?", *filters.To)
			}
			if filters.Keyword != "" {
				keyword := "%" + filters.Keyword + "%"
				q = q.
					Joins("LEFT JOIN users renters ON renters.id = bookings.renter_id").
					Joins("LEFT JOIN properties ON properties.id = bookings.property_id").
					Where("renters.full_name LIKE ? OR properties.name LIKE ?", keyword, keyword)
			}
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var bookings []models.Booking
			if err := q.
				Preload("Agency").
				Preload("Property").
				Preload("Renter").
				Preload("Location.Values", "language = ?", i18n.Normalize(params.Language)).
				Order("bookings.created_at DESC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": count})
		}).
		GET("/booking/:id/:language", func(ctx *gin.Context) {
			var params struct {
				ID       uint   `uri:"id" binding:"required"`
				Language string `uri:"language" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var booking models.Booking
			db := db.GetDb()
			if err := db.
				Preload("Agency").
				Preload("Property").
				Preload("Renter").
				Preload("Location.Values", "language = ?", i18n.Normalize(params.Language)).
				First(&booking, params.ID).
				Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
