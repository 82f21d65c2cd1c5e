package domain

import (
	"strconv"
	"strings"
)

// CardArgs is the transient bundle of card data for a single initiate
// call. It is never persisted and must never be logged verbatim.
type CardArgs struct {
	Number      string
	CVV         string
	HolderName  string
	ExpiryMonth string
	// ExpiryYear is the 4-digit year as entered at checkout.
	ExpiryYear string
}

// NormalizedNumber returns the PAN with spaces and dashes stripped, the
// format the gateway expects.
func (c CardArgs) NormalizedNumber() string {
	n := strings.ReplaceAll(c.Number, " ", "")
	return strings.ReplaceAll(n, "-", "")
}

// ShortExpiryYear returns the last two digits of the expiry year.
func (c CardArgs) ShortExpiryYear() string {
	if len(c.ExpiryYear) <= 2 {
		return c.ExpiryYear
	}
	return c.ExpiryYear[len(c.ExpiryYear)-2:]
}

// Validate checks the card fields before any gateway call is attempted.
func (c CardArgs) Validate() error {
	number := c.NormalizedNumber()
	if len(number) < 13 || len(number) > 19 || !isDigits(number) {
		return NewDomainError(ErrorCodeValidationCardInvalid, "invalid card number")
	}
	if !luhnValid(number) {
		return NewDomainError(ErrorCodeValidationCardInvalid, "invalid card number")
	}
	if len(c.CVV) < 3 || len(c.CVV) > 4 || !isDigits(c.CVV) {
		return NewDomainError(ErrorCodeValidationCardInvalid, "invalid card verification code")
	}
	if strings.TrimSpace(c.HolderName) == "" {
		return NewDomainError(ErrorCodeValidationCardInvalid, "card holder name is required")
	}
	month, err := strconv.Atoi(c.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return NewDomainError(ErrorCodeValidationCardInvalid, "invalid expiry month")
	}
	if len(c.ExpiryYear) != 4 || !isDigits(c.ExpiryYear) {
		return NewDomainError(ErrorCodeValidationCardInvalid, "expiry year must have 4 digits")
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// luhnValid checks the PAN check digit.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
