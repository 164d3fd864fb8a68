package payments

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func TestSumRevenue(t *testing.T) {
	charges := []Charge{
		{ID: "ch_1", Amount: 2500, Currency: "pln", Paid: true},
		{ID: "ch_2", Amount: 1000, AmountRefunded: 400, Currency: "pln", Paid: true},
		{ID: "ch_3", Amount: 9000, Currency: "pln", Paid: true, Refunded: true},
		{ID: "ch_4", Amount: 700, Currency: "eur", Paid: false},
		{ID: "ch_5", Amount: 1500, Currency: "eur", Paid: true},
	}

	got := SumRevenue(charges)

	assert.Equal(t, []Revenue{
		{Currency: "pln", Amount: 3100, Charges: 2},
		{Currency: "eur", Amount: 1500, Charges: 1},
	}, got)
}

func TestSumRevenueEmpty(t *testing.T) {
	got := SumRevenue(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIsResourceMissing(t *testing.T) {
	missing := &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such price"}

	assert.True(t, isResourceMissing(missing))
	assert.True(t, isResourceMissing(fmt.Errorf("wrapped: %w", missing)))
	assert.False(t, isResourceMissing(&stripe.Error{Code: stripe.ErrorCodeAPIKeyExpired}))
	assert.False(t, isResourceMissing(fmt.Errorf("network down")))
}
