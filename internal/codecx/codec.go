// Package codecx holds the byte/string transforms used at every storage and
// transport boundary: standard base64 for ciphertexts, IVs and salts, and
// unpadded base64url for WebAuthn PRF salts and disclosure-link fragments.
// Pure transforms, no crypto.
package codecx

import "encoding/base64"

// EncodeBase64 encodes b using standard base64 with padding.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes a standard padded base64 string.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeBase64URL encodes b using unpadded base64url, the WebAuthn
// convention for credential ids and PRF salts. Also used for the payload
// key carried in a disclosure-link fragment, where '+' and '/' would need
// percent-escaping.
func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL decodes an unpadded base64url string.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// BytesToString interprets b as UTF-8 text.
func BytesToString(b []byte) string {
	return string(b)
}

// StringToBytes returns the UTF-8 encoding of s.
func StringToBytes(s string) []byte {
	return []byte(s)
}
