package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the gateway signature for an order/payment pair: hex encoded
// HMAC-SHA256 of "orderID|paymentID" keyed by secret.
func Sign(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature reports whether signature is the exact (case-sensitive)
// signature for the pair. Any empty input is a rejection.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false
	}
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignatureVerifier holds the process-wide gateway secret.
type SignatureVerifier struct {
	secret string
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret}
}

func (v *SignatureVerifier) Sign(orderID, paymentID string) string {
	return Sign(orderID, paymentID, v.secret)
}

func (v *SignatureVerifier) Verify(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, v.secret)
}
