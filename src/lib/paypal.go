package lib

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway wraps the PayPal Orders API behind the same kind of seam as
// StripeGateway.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, bookingID uint, amount float64, currency, description string) (*paypal.Order, error)
	GetOrder(ctx context.Context, orderID string) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error)
}

type paypalGateway struct {
	inner *paypal.Client
}

func (g *paypalGateway) CreateOrder(ctx context.Context, bookingID uint, amount float64, currency, description string) (*paypal.Order, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: strconv.FormatUint(uint64(bookingID), 10),
			Description: description,
			CustomID:    strconv.FormatUint(uint64(bookingID), 10),
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    strconv.FormatFloat(amount, 'f', 2, 64),
			},
		},
	}
	return g.inner.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
}

func (g *paypalGateway) GetOrder(ctx context.Context, orderID string) (*paypal.Order, error) {
	return g.inner.GetOrder(ctx, orderID)
}

func (g *paypalGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error) {
	return g.inner.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
}

var paypalClient PayPalGateway

func GetPayPalGateway() (PayPalGateway, error) {
	if paypalClient != nil {
		return paypalClient, nil
	}
	base := paypal.APIBaseSandBox
	if os.Getenv("PAYPAL_LIVE") == "true" {
		base = paypal.APIBaseLive
	}
	c, err := paypal.NewClient(os.Getenv("PAYPAL_CLIENT_ID"), os.Getenv("PAYPAL_CLIENT_SECRET"), base)
	if err != nil {
		log.Printf("Could not initialize PayPal client: %s\n", err.Error())
		return nil, err
	}
	if _, err := c.GetAccessToken(context.Background()); err != nil {
		log.Printf("Could not retrieve PayPal access token: %s\n", err.Error())
		return nil, err
	}
	paypalClient = &paypalGateway{inner: c}
	return paypalClient, nil
}

// NewPayPalGateway replaces the gateway with a custom implementation.
func NewPayPalGateway(g PayPalGateway) {
	paypalClient = g
}
