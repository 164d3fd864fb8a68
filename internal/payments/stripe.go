package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProcessor{api: api}
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}

func (sp *StripeProcessor) PriceExists(ctx context.Context, priceID, account string) error {
	params := &stripe.PriceParams{}
	params.Context = ctx
	params.SetStripeAccount(account)

	if _, err := sp.api.Prices.Get(priceID, params); err != nil {
		if isResourceMissing(err) {
			return ErrPriceNotFound
		}
		return fmt.Errorf("failed to retrieve price %s: %w", priceID, err)
	}
	return nil
}

func (sp *StripeProcessor) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.Destination != "" {
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.Destination),
			},
		}
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	params.SetStripeAccount(p.Account)

	s, err := sp.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (sp *StripeProcessor) GetCheckoutSession(ctx context.Context, id, account string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.SetStripeAccount(account)

	s, err := sp.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session %s: %w", id, err)
	}

	status := &SessionStatus{
		ID:          s.ID,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Expired:     s.Status == stripe.CheckoutSessionStatusExpired,
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		status.PaymentIntentID = s.PaymentIntent.ID
	}
	return status, nil
}

func (sp *StripeProcessor) DeactivatePrice(ctx context.Context, priceID, account string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx
	params.SetStripeAccount(account)

	if _, err := sp.api.Prices.Update(priceID, params); err != nil {
		return fmt.Errorf("failed to deactivate price %s: %w", priceID, err)
	}
	return nil
}

func (sp *StripeProcessor) ArchiveProduct(ctx context.Context, productID, account string) error {
	params := &stripe.ProductParams{Active: stripe.Bool(false)}
	params.Context = ctx
	params.SetStripeAccount(account)

	if _, err := sp.api.Products.Update(productID, params); err != nil {
		return fmt.Errorf("failed to archive product %s: %w", productID, err)
	}
	return nil
}

func (sp *StripeProcessor) ListCharges(ctx context.Context, account string, from, to time.Time) ([]Charge, error) {
	params := &stripe.ChargeListParams{}
	params.Context = ctx
	params.SetStripeAccount(account)
	if !from.IsZero() || !to.IsZero() {
		params.CreatedRange = &stripe.RangeQueryParams{}
		if !from.IsZero() {
			params.CreatedRange.GreaterThanOrEqual = from.Unix()
		}
		if !to.IsZero() {
			params.CreatedRange.LesserThan = to.Unix()
		}
	}

	var charges []Charge
	it := sp.api.Charges.List(params)
	for it.Next() {
		c := it.Charge()
		charges = append(charges, Charge{
			ID:             c.ID,
			Amount:         c.Amount,
			AmountRefunded: c.AmountRefunded,
			Currency:       string(c.Currency),
			Paid:           c.Paid,
			Refunded:       c.Refunded,
			Created:        time.Unix(c.Created, 0).UTC(),
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	return charges, nil
}
