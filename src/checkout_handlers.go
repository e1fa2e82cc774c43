package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"rms/src/common"
	"rms/src/config"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errRenterNotResolved = errors.New("renter not resolved")

// resolveRenter returns the booking's renter, creating a provisional account
// when the checkout carries a signup profile. A provisional renter is deleted
// by the reaper unless a later payment confirmation clears its deadline.
func resolveRenter(tx *gorm.DB, body *types.CheckoutRequestBody) (*models.User, error) {
	if body.Renter != nil {
		expiry := time.Now().Add(config.PROVISIONAL_TTL_MINUTES * time.Minute)
		renter := models.User{
			FullName: body.Renter.FullName,
			Email:    body.Renter.Email,
			Phone:    body.Renter.Phone,
			Type:     types.USER_TYPE_RENTER,
			Language: i18n.Normalize(body.Renter.Language),
		}
		if !body.PayLater {
			renter.ExpiresAt = &expiry
		}
		if err := tx.Create(&renter).Error; err != nil {
			return nil, err
		}
		token, err := utils.CreateActivationToken(tx, renter.ID)
		if err != nil {
			return nil, err
		}
		if err := utils.SendActivationEmail(&renter, token.Value, types.APP_TYPE_FRONTEND); err != nil {
			log.Printf("Error sending activation email to %s: %s\n", renter.Email, err.Error())
		}
		return &renter, nil
	}
	if body.Booking.RenterID == 0 {
		return nil, errRenterNotResolved
	}
	var renter models.User
	if err := tx.First(&renter, body.Booking.RenterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRenterNotResolved
		}
		return nil, err
	}
	return &renter, nil
}

func checkoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if !body.PayLater && !body.PayPal && body.PaymentIntentID == "" && body.SessionID == "" {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "paymentIntentId and sessionId not found"})
				return
			}
			from, err := utils.ParseBookingDate(body.Booking.From)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			to, err := utils.ParseBookingDate(body.Booking.To)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			var booking models.Booking
			var renter *models.User
			db := db.GetDb()
			err = db.Transaction(func(tx *gorm.DB) error {
				renter, err = resolveRenter(tx, &body)
				if err != nil {
					return err
				}
				var agency models.User
				if err := tx.First(&agency, body.Booking.AgencyID).Error; err != nil {
					return err
				}
				var property models.Property
				if err := tx.First(&property, body.Booking.PropertyID).Error; err != nil {
					return err
				}
				var location models.Location
				if err := tx.First(&location, body.Booking.LocationID).Error; err != nil {
					return err
				}

				price, err := utils.BookingPrice(&property, from, to, body.Booking.Cancellation)
				if err != nil {
					return err
				}

				booking = models.Booking{
					AgencyID:     agency.ID,
					PropertyID:   property.ID,
					RenterID:     &renter.ID,
					LocationID:   location.ID,
					From:         from,
					To:           to,
					Price:        price,
					Cancellation: body.Booking.Cancellation,
				}

				if body.PayLater {
					booking.Status = types.BOOKING_PENDING
				} else if body.PaymentIntentID != "" {
					sg := lib.GetStripeGateway()
					pi, err := sg.RetrievePaymentIntent(context.Background(), body.PaymentIntentID)
					if err != nil {
						return err
					}
					if pi.Status != "succeeded" {
						return errors.New("payment not confirmed by provider: " + string(pi.Status))
					}
					booking.Status = types.BOOKING_PAID
					booking.PaymentIntentID = &body.PaymentIntentID
					// Paid up front: the renter is permanent immediately, no
					// confirmation poll will clear the signup deadline later.
					if renter.ExpiresAt != nil {
						if err := tx.
							Model(&models.User{}).
							Where("id = ?", renter.ID).
							Update("expires_at", nil).
							Error; err != nil {
							return err
						}
					}
					customerId := body.CustomerID
					if customerId == "" && pi.Customer != nil {
						customerId = pi.Customer.ID
					}
					if customerId != "" {
						booking.CustomerID = &customerId
						if err := tx.
							Model(&models.User{}).
							Where("id = ?", renter.ID).
							Update("customer_id", customerId).
							Error; err != nil {
							return err
						}
					}
				} else {
					// Stripe Checkout or PayPal: the booking stays provisional
					// until the payment is confirmed through polling.
					expiry := time.Now().Add(config.PROVISIONAL_TTL_MINUTES * time.Minute)
					booking.Status = types.BOOKING_VOID
					booking.ExpiresAt = &expiry
					if body.SessionID != "" {
						booking.SessionID = &body.SessionID
					}
					if body.CustomerID != "" {
						booking.CustomerID = &body.CustomerID
					}
				}

				if err := tx.Create(&booking).Error; err != nil {
					return err
				}
				booking.Agency = &agency
				booking.Property = &property
				booking.Renter = renter
				return nil
			})
			if err != nil {
				if errors.Is(err, errRenterNotResolved) {
					ctx.Status(http.StatusNoContent)
					return
				}
				log.Printf("Error processing checkout: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			// A paid booking is only announced once the charge is tied to a
			// Stripe customer; without one the payment is not settled enough
			// to notify on.
			if booking.Status == types.BOOKING_PENDING ||
				(booking.Status == types.BOOKING_PAID && booking.PaymentIntentID != nil && booking.CustomerID != nil) {
				common.NotifyBookingConfirmed(&booking)
			}

			ctx.JSON(http.StatusOK, gin.H{"bookingId": booking.ID})
		})
	return g
}
