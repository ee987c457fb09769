package extract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned for payloads that are not an even-length
// hex string carrying a key byte and at least one data byte.
var ErrMalformedPayload = errors.New("malformed cfemail payload")

// DecodeCFEmail reverses the Cloudflare email-protection encoding: the first
// byte is an XOR key and every following byte XOR the key is one character.
func DecodeCFEmail(payload string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if len(raw) < 2 {
		return "", ErrMalformedPayload
	}

	key := raw[0]
	out := make([]byte, len(raw)-1)

	for i, b := range raw[1:] {
		out[i] = b ^ key
	}

	return string(out), nil
}

// EncodeCFEmail is the inverse of DecodeCFEmail.
func EncodeCFEmail(address string, key byte) string {
	raw := make([]byte, 0, len(address)+1)
	raw = append(raw, key)

	for i := 0; i < len(address); i++ {
		raw = append(raw, address[i]^key)
	}

	return hex.EncodeToString(raw)
}
