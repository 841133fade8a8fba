package services

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/nivash/building-service/internal/config"
	"github.com/nivash/building-service/internal/constants"
)

// PaymentIntent is the slice of Stripe's intent object the payment flow
// needs. CardBrand/CardLast4 are blank until the charge exists.
type PaymentIntent struct {
	ID            string
	ClientSecret  string
	AmountCents   int64
	Status        stripe.PaymentIntentStatus
	CardBrand     string
	CardLast4     string
	Metadata      map[string]string
	FailureReason string
}

// StripeGateway isolates the hosted processor behind an interface so
// the payment service can be exercised without network access.
type StripeGateway interface {
	CreateIntent(ctx context.Context, amountCents int64, idempotencyKey, receiptEmail string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

type stripeGateway struct{}

// NewStripeGateway configures the global Stripe client key and returns
// the live gateway.
func NewStripeGateway(cfg *config.Config) StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return &stripeGateway{}
}

func (g *stripeGateway) CreateIntent(ctx context.Context, amountCents int64, idempotencyKey, receiptEmail string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(constants.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ReceiptEmail:       stripe.String(receiptEmail),
	}
	params.Context = ctx
	// A repeated submission with the same key returns the original
	// intent instead of opening a second charge.
	params.SetIdempotencyKey(idempotencyKey)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

func (g *stripeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(pi), nil
}

func fromStripeIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Status:       pi.Status,
		Metadata:     pi.Metadata,
	}
	if pi.LastPaymentError != nil {
		out.FailureReason = pi.LastPaymentError.Msg
	}
	if pi.LatestCharge != nil && pi.LatestCharge.PaymentMethodDetails != nil &&
		pi.LatestCharge.PaymentMethodDetails.Card != nil {
		out.CardBrand = string(pi.LatestCharge.PaymentMethodDetails.Card.Brand)
		out.CardLast4 = pi.LatestCharge.PaymentMethodDetails.Card.Last4
	}
	return out
}
