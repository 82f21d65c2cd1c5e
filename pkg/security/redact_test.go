package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPAN(t *testing.T) {
	in := "cardnumber=4111111111111111&cardcvv2=123"
	out := RedactPAN(in)

	assert.NotContains(t, out, "4111111111111111")
	assert.Contains(t, out, "****1111")
	assert.Contains(t, out, "cardcvv2=123")
}

func TestRedactPAN_MultipleOccurrences(t *testing.T) {
	in := "first 5555555555554444 second 4111111111111111"
	out := RedactPAN(in)

	assert.Equal(t, "first ****4444 second ****1111", out)
}

func TestRedactPAN_NoPAN(t *testing.T) {
	in := "txnamount=10050&orderid=S00042"
	assert.Equal(t, in, RedactPAN(in))
}

func TestRedactPAN_ShorterDigitRunsUntouched(t *testing.T) {
	in := "txntimestamp=170000000000" // 12 digits
	assert.Equal(t, in, RedactPAN(in))
}
