package garanti

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9A-F]{40}$`)

func TestSha1Upper_KnownVector(t *testing.T) {
	// FIPS 180-1 test vector for "abc".
	assert.Equal(t, "A9993E2364706816ABA3E25717850C26C9CD0D89", sha1Upper("abc"))
}

func TestZeroPad(t *testing.T) {
	assert.Equal(t, "000000001", zeroPad("1", 9))
	assert.Equal(t, "030691297", zeroPad("30691297", 9))
	assert.Equal(t, "1234567890", zeroPad("1234567890", 9))
}

func TestSecurityData_Deterministic(t *testing.T) {
	h := Hasher{TerminalID: "30691297", ProvPassword: "123qweASD/", StoreKey: "12345678"}

	first := h.SecurityData()
	second := h.SecurityData()

	require.Equal(t, first, second)
	assert.Regexp(t, hexDigest, first)
}

func TestSecure3DHash_Deterministic(t *testing.T) {
	h := Hasher{TerminalID: "30691297", ProvPassword: "123qweASD/", StoreKey: "12345678"}

	first := h.Secure3DHash("S00042", "10050", "https://shop.example.com/payment/garanti/return", "sales")
	second := h.Secure3DHash("S00042", "10050", "https://shop.example.com/payment/garanti/return", "sales")

	require.Equal(t, first, second)
	assert.Regexp(t, hexDigest, first)
}

func TestSecure3DHash_SingleFieldPerturbation(t *testing.T) {
	base := Hasher{TerminalID: "30691297", ProvPassword: "123qweASD/", StoreKey: "12345678"}
	baseHash := base.Secure3DHash("S00042", "10050", "https://shop.example.com/return", "sales")

	perturbed := []string{
		Hasher{TerminalID: "30691298", ProvPassword: "123qweASD/", StoreKey: "12345678"}.
			Secure3DHash("S00042", "10050", "https://shop.example.com/return", "sales"),
		Hasher{TerminalID: "30691297", ProvPassword: "123qweASD!", StoreKey: "12345678"}.
			Secure3DHash("S00042", "10050", "https://shop.example.com/return", "sales"),
		Hasher{TerminalID: "30691297", ProvPassword: "123qweASD/", StoreKey: "12345679"}.
			Secure3DHash("S00042", "10050", "https://shop.example.com/return", "sales"),
		base.Secure3DHash("S00043", "10050", "https://shop.example.com/return", "sales"),
		base.Secure3DHash("S00042", "10051", "https://shop.example.com/return", "sales"),
		base.Secure3DHash("S00042", "10050", "https://shop.example.com/other", "sales"),
		base.Secure3DHash("S00042", "10050", "https://shop.example.com/return", "preauth"),
	}

	seen := map[string]bool{baseHash: true}
	for i, hash := range perturbed {
		assert.False(t, seen[hash], "perturbation %d collided with an earlier hash", i)
		seen[hash] = true
	}
}

func TestCallbackHash_FieldOrderMatters(t *testing.T) {
	h := Hasher{TerminalID: "30691297", ProvPassword: "123qweASD/", StoreKey: "12345678"}

	straight := h.CallbackHash("S00042", "30691297", "10050")
	swapped := h.CallbackHash("30691297", "S00042", "10050")

	assert.NotEqual(t, straight, swapped)
	assert.Regexp(t, hexDigest, straight)
}
