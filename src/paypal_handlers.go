package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"rms/src/common"
	"rms/src/db"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"

	"github.com/gin-gonic/gin"
	"github.com/plutov/paypal/v4"
	"gorm.io/gorm"
)

// isPayPalNotFound reports whether PayPal does not know the order yet, which
// a polling client treats as "try again later".
func isPayPalNotFound(err error) bool {
	var payPalErr *paypal.ErrorResponse
	if !errors.As(err, &payPalErr) {
		return false
	}
	if payPalErr.Name == "RESOURCE_NOT_FOUND" {
		return true
	}
	return payPalErr.Response != nil && payPalErr.Response.StatusCode == http.StatusNotFound
}

func paypalHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/create-paypal-order", func(ctx *gin.Context) {
			var body types.CreatePayPalOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pg, err := lib.GetPayPalGateway()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			description := body.Name
			if description == "" {
				description = fmt.Sprintf("Booking %d", body.BookingID)
			}
			order, err := pg.CreateOrder(context.Background(), body.BookingID, body.Amount, body.Currency, description)
			if err != nil {
				log.Printf("Error creating PayPal order for booking %d: %s\n", body.BookingID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.
				Model(&models.Booking{}).
				Where("id = ?", body.BookingID).
				Update("pay_pal_order_id", order.ID).
				Error; err != nil {
				log.Printf("Error saving PayPal order id on booking %d: %s\n", body.BookingID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"orderId": order.ID})
		}).
		POST("/check-paypal-order/:bookingId/:orderId", func(ctx *gin.Context) {
			var params struct {
				BookingID uint   `uri:"bookingId" binding:"required"`
				OrderID   string `uri:"orderId" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Where("id = ? AND expires_at IS NOT NULL", params.BookingID).
				First(&booking).
				Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			pg, err := lib.GetPayPalGateway()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := pg.GetOrder(context.Background(), params.OrderID)
			if err != nil {
				if isPayPalNotFound(err) {
					ctx.Status(http.StatusNoContent)
					return
				}
				log.Printf("Error retrieving PayPal order %s: %s\n", params.OrderID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			status := order.Status
			if status == paypal.OrderStatusApproved {
				capture, err := pg.CaptureOrder(context.Background(), params.OrderID)
				if err != nil {
					log.Printf("Error capturing PayPal order %s: %s\n", params.OrderID, err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				status = capture.Status
			}
			if status != paypal.OrderStatusCompleted {
				err := db.Transaction(func(tx *gorm.DB) error {
					return tx.Unscoped().Delete(&models.Booking{}, booking.ID).Error
				})
				if err != nil {
					log.Printf("Error deleting booking %d: %s\n", booking.ID, err.Error())
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": status})
				return
			}
			confirmed, promoted, err := common.ConfirmBooking(booking.ID)
			if err != nil {
				log.Printf("Error confirming booking %d: %s\n", booking.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if promoted {
				common.NotifyBookingConfirmed(confirmed)
			}
			ctx.JSON(http.StatusOK, gin.H{"bookingId": booking.ID})
		})
	return g
}
