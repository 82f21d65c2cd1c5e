package security

import "regexp"

// panPattern matches a contiguous 16-digit run, the shape of a full PAN
// in a form-encoded or XML payload.
var panPattern = regexp.MustCompile(`\d{16}`)

// RedactPAN replaces every 16-digit sequence in s with "****" plus the
// last four digits. Every audit-log path must run its payload through
// this before the payload reaches any sink, whether or not audit
// logging is currently enabled.
func RedactPAN(s string) string {
	return panPattern.ReplaceAllStringFunc(s, func(pan string) string {
		return "****" + pan[len(pan)-4:]
	})
}
