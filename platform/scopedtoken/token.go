// Package scopedtoken derives capability tokens bound to a scope and subject,
// keyed by the shared service secret. Tokens carry no expiry and stay valid
// until the secret is rotated.
package scopedtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Derive returns "<scope>_<hex>" where hex is the first 16 bytes of
// HMAC-SHA256(secret, scope ":" subject).
func Derive(secret, scope, subject string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(scope + ":" + subject))
	sum := mac.Sum(nil)
	return scope + "_" + hex.EncodeToString(sum[:16])
}

// Verify compares token against the derived value in constant time.
func Verify(secret, scope, subject, token string) bool {
	token = strings.TrimSpace(token)
	if token == "" || secret == "" {
		return false
	}
	expected := Derive(secret, scope, subject)
	return hmac.Equal([]byte(expected), []byte(token))
}
