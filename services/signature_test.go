package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	got := Sign("order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", "test_secret")
	assert.Equal(t, "a982c20f48234e966ccc8d903bff75730b34341007236ad8c8a9d7c0ae5848c5", got)
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	triples := []struct{ order, payment, secret string }{
		{"order_1", "pay_1", "secret"},
		{"order_9A33XWu170gUtm", "pay_29QQoUBi66xm2f", "test_secret"},
		{"order_ünïcode", "pay_x", "s3cr3t with spaces"},
		{"o", "p", strings.Repeat("k", 128)},
	}
	for _, tt := range triples {
		sig := Sign(tt.order, tt.payment, tt.secret)
		assert.True(t, VerifySignature(tt.order, tt.payment, sig, tt.secret), "%s|%s", tt.order, tt.payment)
	}
}

func TestVerifySignatureRejectsAnySingleCharacterChange(t *testing.T) {
	sig := Sign("order_1", "pay_1", "secret")
	for i := range sig {
		replacement := byte('0')
		if sig[i] == '0' {
			replacement = '1'
		}
		mutated := sig[:i] + string(replacement) + sig[i+1:]
		assert.False(t, VerifySignature("order_1", "pay_1", mutated, "secret"), "position %d", i)
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	sig := Sign("order_1", "pay_1", "secret")

	tests := []struct {
		name                      string
		order, payment, signature string
		secret                    string
	}{
		{"uppercase hex", "order_1", "pay_1", strings.ToUpper(sig), "secret"},
		{"truncated", "order_1", "pay_1", sig[:len(sig)-1], "secret"},
		{"wrong secret", "order_1", "pay_1", sig, "other"},
		{"swapped ids", "pay_1", "order_1", sig, "secret"},
		{"missing order", "", "pay_1", sig, "secret"},
		{"missing payment", "order_1", "", sig, "secret"},
		{"missing signature", "order_1", "pay_1", "", "secret"},
		{"missing secret", "order_1", "pay_1", Sign("order_1", "pay_1", ""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(tt.order, tt.payment, tt.signature, tt.secret))
		})
	}
}

func TestSignatureVerifierUsesSecret(t *testing.T) {
	v := NewSignatureVerifier("secret")
	assert.Equal(t, Sign("order_1", "pay_1", "secret"), v.Sign("order_1", "pay_1"))
	assert.True(t, v.Verify("order_1", "pay_1", v.Sign("order_1", "pay_1")))
	assert.False(t, NewSignatureVerifier("other").Verify("order_1", "pay_1", v.Sign("order_1", "pay_1")))
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{49.99, 4999},
		{50, 5000},
		{2000, 200000},
		{0.29, 29},
		{1.005, 100},
		{19.999, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMinorUnits(tt.amount), "amount %v", tt.amount)
	}
}
