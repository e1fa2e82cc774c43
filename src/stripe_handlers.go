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
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// findOrCreateCustomer reuses an existing Stripe customer for the email when
// one exists so repeat renters keep their payment history on one record.
func findOrCreateCustomer(ctx context.Context, email, name string) (*stripe.Customer, error) {
	sg := lib.GetStripeGateway()
	customers, err := sg.ListCustomersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(customers) > 0 {
		return customers[0], nil
	}
	return sg.CreateCustomer(ctx, &stripe.CustomerCreateParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	})
}

// isStripeNotFound reports whether Stripe does not know the resource yet. The
// frontend polls before Stripe has persisted the session, so this is a retry
// condition rather than an error.
func isStripeNotFound(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound
}

func stripeHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	checkCheckoutSession := func(ctx *gin.Context) {
		sessionId := ctx.Params.ByName("sessionId")
		if sessionId == "" {
			ctx.Status(http.StatusBadRequest)
			return
		}
		db := db.GetDb()
		var booking models.Booking
		if err := db.
			Where("session_id = ? AND expires_at IS NOT NULL", sessionId).
			First(&booking).
			Error; err != nil {
			ctx.Status(http.StatusNoContent)
			return
		}
		sg := lib.GetStripeGateway()
		session, err := sg.RetrieveCheckoutSession(context.Background(), sessionId)
		if err != nil {
			if isStripeNotFound(err) {
				ctx.Status(http.StatusNoContent)
				return
			}
			log.Printf("Error retrieving checkout session %s: %s\n", sessionId, err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			// The session was abandoned or the payment failed; drop the
			// provisional booking instead of waiting for the reaper.
			err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Unscoped().Delete(&models.Booking{}, booking.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting booking %d: %s\n", booking.ID, err.Error())
			}
			ctx.JSON(http.StatusBadRequest, gin.H{"error": string(session.PaymentStatus)})
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
	}
	g.
		POST("/create-checkout-session", func(ctx *gin.Context) {
			var body types.CreateCheckoutSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			customer, err := findOrCreateCustomer(context.Background(), body.ReceiptEmail, body.CustomerName)
			if err != nil {
				log.Printf("Error resolving Stripe customer for %s: %s\n", body.ReceiptEmail, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			name := body.Description
			if name == "" {
				name = fmt.Sprintf("Booking %d", body.BookingID)
			}
			sg := lib.GetStripeGateway()
			session, err := sg.CreateCheckoutSession(context.Background(), &stripe.CheckoutSessionCreateParams{
				Customer: stripe.String(customer.ID),
				Locale:   stripe.String(body.Locale),
				Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
				UIMode:   stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
				LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
					{
						Quantity: stripe.Int64(1),
						PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
							Currency:   stripe.String(body.Currency),
							UnitAmount: stripe.Int64(int64(body.Amount * 100)),
							ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
								Name: stripe.String(name),
							},
						},
					},
				},
			})
			if err != nil {
				log.Printf("Error creating checkout session: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"sessionId":    session.ID,
				"customerId":   customer.ID,
				"clientSecret": session.ClientSecret,
			})
		}).
		GET("/check-checkout-session/:sessionId", checkCheckoutSession).
		POST("/check-checkout-session/:sessionId", checkCheckoutSession)
	return g
}
