package garanti

import (
	"github.com/ecomkit/checkout-service/internal/domain"
)

// currencyCodes maps ISO 4217 alphabetic codes to the numeric codes the
// gateway expects.
var currencyCodes = map[string]string{
	"TRY": "949",
	"USD": "840",
	"EUR": "978",
	"GBP": "826",
	"JPY": "392",
	"RUB": "643",
}

// CurrencyCode returns the gateway's numeric code for an ISO currency.
func CurrencyCode(currency string) (string, error) {
	code, ok := currencyCodes[currency]
	if !ok {
		return "", domain.NewDomainError(domain.ErrorCodeValidationFailed, "unsupported currency: "+currency)
	}
	return code, nil
}
