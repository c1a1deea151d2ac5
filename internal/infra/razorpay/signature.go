package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyWebhookSignature recomputes the HMAC-SHA256 of the raw webhook body
// with the shared webhook secret and compares it to the x-razorpay-signature
// header value in constant time.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	return verify(payload, signature, c.webhookSecret)
}

func verify(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
