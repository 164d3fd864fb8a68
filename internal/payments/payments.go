// Package payments talks to the hosted payment processor on behalf of event organizers.
package payments

import (
	"context"
	"errors"
	"time"
)

// ErrPriceNotFound is returned when a price does not exist under the given account.
var ErrPriceNotFound = errors.New("price not found")

type CheckoutParams struct {
	PriceID     string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
	Account     string
	Destination string // empty when funds settle to the platform
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionStatus is a checkout session as the processor reports it. An expired session can no
// longer be paid. An open or complete but unpaid one may still settle.
type SessionStatus struct {
	ID              string
	Paid            bool
	Expired         bool
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
}

type Charge struct {
	ID             string
	Amount         int64
	AmountRefunded int64
	Currency       string
	Paid           bool
	Refunded       bool
	Created        time.Time
}

type Processor interface {
	PriceExists(ctx context.Context, priceID, account string) error
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*Session, error)
	GetCheckoutSession(ctx context.Context, id, account string) (*SessionStatus, error)
	DeactivatePrice(ctx context.Context, priceID, account string) error
	ArchiveProduct(ctx context.Context, productID, account string) error
	ListCharges(ctx context.Context, account string, from, to time.Time) ([]Charge, error)
}

// Revenue is the sum of settled charges in one currency.
type Revenue struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Charges  int    `json:"charges"`
}

// SumRevenue adds paid charges per currency, net of partial refunds. Fully refunded charges
// are skipped.
func SumRevenue(charges []Charge) []Revenue {
	byCurrency := make(map[string]*Revenue)
	var order []string
	for _, c := range charges {
		if !c.Paid || c.Refunded {
			continue
		}
		r, ok := byCurrency[c.Currency]
		if !ok {
			r = &Revenue{Currency: c.Currency}
			byCurrency[c.Currency] = r
			order = append(order, c.Currency)
		}
		r.Amount += c.Amount - c.AmountRefunded
		r.Charges++
	}

	out := make([]Revenue, 0, len(order))
	for _, cur := range order {
		out = append(out, *byCurrency[cur])
	}
	return out
}
