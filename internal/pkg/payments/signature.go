package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks that signatureHeader is the HMAC-SHA256 of
// the raw, unparsed body bytes under secret. Square sends the digest
// base64-encoded, but some relays re-encode it as hex, so both textual forms
// of the same digest are accepted. Comparison is constant time and exact;
// an empty secret or header always fails.
func VerifyWebhookSignature(raw []byte, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	key := strings.TrimSpace(secret)
	if sig == "" || key == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(raw)
	digest := mac.Sum(nil)

	if hmac.Equal([]byte(sig), []byte(base64.StdEncoding.EncodeToString(digest))) {
		return true
	}
	return hmac.Equal([]byte(strings.ToLower(sig)), []byte(hex.EncodeToString(digest)))
}

// Fingerprint derives the idempotency-ledger key for a webhook delivery: a
// SHA-256 over the exact raw bytes, never a re-serialized object, so key
// ordering in the payload cannot split one delivery across two ledger rows.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
