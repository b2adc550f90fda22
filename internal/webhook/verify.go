package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verify checks an inbound notification signature: base64 HMAC-SHA256 of
// the raw body under the shared secret, compared in constant time. False
// means the notification must not trigger a sync. An empty secret always
// rejects; it means signing was never configured.
func Verify(body []byte, signatureHeader, secret string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
