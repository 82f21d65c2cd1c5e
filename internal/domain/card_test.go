package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestCard() CardArgs {
	return CardArgs{
		Number:      "4111111111111111",
		CVV:         "123",
		HolderName:  "Ayşe Yılmaz",
		ExpiryMonth: "09",
		ExpiryYear:  "2027",
	}
}

func TestCardValidate_OK(t *testing.T) {
	assert.NoError(t, validTestCard().Validate())
}

func TestCardValidate_NormalizesSpacesAndDashes(t *testing.T) {
	card := validTestCard()
	card.Number = "4111 1111-1111 1111"
	assert.NoError(t, card.Validate())
	assert.Equal(t, "4111111111111111", card.NormalizedNumber())
}

func TestCardValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CardArgs)
	}{
		{"bad check digit", func(c *CardArgs) { c.Number = "4111111111111112" }},
		{"too short", func(c *CardArgs) { c.Number = "411111111111" }},
		{"too long", func(c *CardArgs) { c.Number = "41111111111111111111" }},
		{"non-digit number", func(c *CardArgs) { c.Number = "4111abcd11111111" }},
		{"cvv too short", func(c *CardArgs) { c.CVV = "12" }},
		{"cvv too long", func(c *CardArgs) { c.CVV = "12345" }},
		{"cvv non-digit", func(c *CardArgs) { c.CVV = "12a" }},
		{"blank holder", func(c *CardArgs) { c.HolderName = "   " }},
		{"month zero", func(c *CardArgs) { c.ExpiryMonth = "0" }},
		{"month thirteen", func(c *CardArgs) { c.ExpiryMonth = "13" }},
		{"month non-numeric", func(c *CardArgs) { c.ExpiryMonth = "ab" }},
		{"two-digit year", func(c *CardArgs) { c.ExpiryYear = "27" }},
		{"non-digit year", func(c *CardArgs) { c.ExpiryYear = "20a7" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validTestCard()
			tc.mutate(&card)
			err := card.Validate()
			require.Error(t, err)
			assert.True(t, IsDomainError(err, ErrorCodeValidationCardInvalid))
		})
	}
}

func TestShortExpiryYear(t *testing.T) {
	assert.Equal(t, "27", CardArgs{ExpiryYear: "2027"}.ShortExpiryYear())
	assert.Equal(t, "27", CardArgs{ExpiryYear: "27"}.ShortExpiryYear())
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, luhnValid("4111111111111111"))
	assert.True(t, luhnValid("5555555555554444"))
	assert.True(t, luhnValid("378282246310005"))
	assert.False(t, luhnValid("4111111111111112"))
}
