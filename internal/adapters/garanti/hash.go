package garanti

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// The Garanti integrity protocol uses uppercase hex SHA-1 digests over
// fixed-order field concatenations. Field order is part of the external
// contract: a wrong order produces a silently failing authentication,
// not an error.

// sha1Upper returns the uppercase hex SHA-1 digest of s.
func sha1Upper(s string) string {
	sum := sha1.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// zeroPad left-pads s with zeros to the given width.
func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Hasher computes the security hashes from the merchant credentials.
type Hasher struct {
	TerminalID   string
	ProvPassword string
	StoreKey     string
}

// SecurityData digests the provisioning password with the terminal id
// zero-padded to 9 digits. Stable across requests.
func (h Hasher) SecurityData() string {
	return sha1Upper(h.ProvPassword + zeroPad(h.TerminalID, 9))
}

// Secure3DHash guards the outbound 3-D Secure initiation request. The
// success and error URLs are both the merchant return URL; txnType is
// "sales" for direct card payments.
func (h Hasher) Secure3DHash(orderRef, amountMinor, returnURL, txnType string) string {
	return sha1Upper(
		h.TerminalID +
			orderRef +
			amountMinor +
			returnURL + // success URL
			returnURL + // error URL
			txnType +
			h.StoreKey +
			h.SecurityData(),
	)
}

// CallbackHash verifies that an inbound callback is consistent with the
// provider: it digests the provider-echoed order id, client id and
// amount together with the merchant security data.
func (h Hasher) CallbackHash(orderID, clientID, txnAmount string) string {
	return sha1Upper(orderID + clientID + txnAmount + h.SecurityData())
}
