package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway is the surface of the Stripe SDK the API depends on. Handlers
// never touch the SDK client directly so tests can swap in a fake.
type StripeGateway interface {
	CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
	ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

type stripeGateway struct {
	inner *stripe.Client
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	return g.inner.V1Customers.Create(ctx, params)
}

func (g *stripeGateway) ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error) {
	list := g.inner.V1Customers.List(ctx, &stripe.CustomerListParams{Email: stripe.String(email)})
	customers := make([]*stripe.Customer, 0)
	var iterErr error
	list(func(c *stripe.Customer, err error) bool {
		if err != nil {
			iterErr = err
			return false
		}
		customers = append(customers, c)
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}
	return customers, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return g.inner.V1CheckoutSessions.Create(ctx, params)
}

func (g *stripeGateway) RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	return g.inner.V1CheckoutSessions.Retrieve(ctx, id, &stripe.CheckoutSessionRetrieveParams{})
}

func (g *stripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return g.inner.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
}

var stripeClient StripeGateway

func GetStripeGateway() StripeGateway {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = &stripeGateway{inner: sc}
	return stripeClient
}

// NewStripeGateway replaces the gateway with a custom implementation.
func NewStripeGateway(g StripeGateway) {
	stripeClient = g
}
