package domain

import "github.com/shopspring/decimal"

// Order is the slice of the external sale order the checkout flow needs:
// the expected payable amount, its currency and the buyer's contact data.
type Order struct {
	ID            string
	Name          string
	PayableAmount decimal.Decimal
	Currency      string
	PartnerEmail  string
	PartnerLang   string
}

// AmountMatches compares a submitted amount against the order's payable
// amount at the account's configured decimal precision.
func (o *Order) AmountMatches(amount decimal.Decimal, precision int32) bool {
	return amount.Round(precision).Equal(o.PayableAmount.Round(precision))
}

// StatusURL returns the portal page the payer lands on after checkout.
func (o *Order) StatusURL() string {
	return "/orders/" + o.Name + "/status"
}
