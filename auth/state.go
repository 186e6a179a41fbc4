package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// The OAuth state parameter is a random payload plus an HMAC-SHA256 tag
// keyed with the configured secret. The callback accepts a state only when
// the tag verifies and the value matches the state cookie, binding the
// callback to the browser that initiated login.

// newState generates a signed state value.
func newState(secret string) string {
	return signState(secret, uuid.NewString())
}

// signState appends the HMAC tag to the payload.
func signState(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	tag := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return payload + "." + tag
}

// verifyState reports whether the state value carries a valid tag.
func verifyState(secret, value string) bool {
	idx := strings.LastIndex(value, ".")
	if idx <= 0 || idx == len(value)-1 {
		return false
	}
	expected := signState(secret, value[:idx])
	return hmac.Equal([]byte(expected), []byte(value))
}
