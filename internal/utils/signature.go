package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSignature computes the expected HMAC-SHA256 signature over
// "orderRef|paymentRef" using the provider webhook secret, hex encoded.
func PaymentSignature(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks a provider signature in constant time.
func VerifyPaymentSignature(secret, orderRef, paymentRef, signature string) bool {
	expected := PaymentSignature(secret, orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(signature))
}
