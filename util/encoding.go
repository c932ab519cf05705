package util

import (
	"encoding/base64"
	"strings"
)

// Base64URLEncode encodes bytes for the wire: base64url, padding stripped.
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Base64URLDecode reverses Base64URLEncode. Padded input is accepted since
// some clients send the padded form.
func Base64URLDecode(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
