package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sandboxFields = map[string]string{
	"merchant_id":   "10000100",
	"merchant_key":  "46f0cd694581a",
	"amount":        "100.00",
	"item_name":     "Test Payment",
	"email_address": "buyer@sandbox.test",
}

func TestSign_KnownDigestWithPassphrase(t *testing.T) {
	signer := NewSigner("jt7NOE43FZPn")

	digest, err := signer.Sign(sandboxFields)
	assert.NoError(t, err)
	assert.Equal(t, "5084c2b0454c409a65257a9d43c0c4a7", digest)
}

func TestSign_KnownDigestWithoutPassphrase(t *testing.T) {
	signer := NewSigner("")

	digest, err := signer.Sign(sandboxFields)
	assert.NoError(t, err)
	assert.Equal(t, "7852250fbadc2f2d545b47e422a96c52", digest)
}

func TestSign_EncodesSpacesAndReservedChars(t *testing.T) {
	signer := NewSigner("secret pass")

	digest, err := signer.Sign(map[string]string{
		"item_name": "O'Neil & Sons (fees)",
		"amount":    "55.10",
	})
	assert.NoError(t, err)
	assert.Equal(t, "be126b537d667c7f8221d21f6d66e119", digest)
}

func TestSign_DeterministicAcrossCalls(t *testing.T) {
	signer := NewSigner("jt7NOE43FZPn")

	first, err := signer.Sign(sandboxFields)
	assert.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := signer.Sign(sandboxFields)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSign_IgnoresSignatureField(t *testing.T) {
	signer := NewSigner("")

	base, err := signer.Sign(sandboxFields)
	assert.NoError(t, err)

	withSig := map[string]string{"signature": "deadbeef"}
	for k, v := range sandboxFields {
		withSig[k] = v
	}
	again, err := signer.Sign(withSig)
	assert.NoError(t, err)
	assert.Equal(t, base, again)
}

func TestSign_EmptyFields(t *testing.T) {
	signer := NewSigner("x")

	_, err := signer.Sign(nil)
	assert.Error(t, err)

	_, err = signer.Sign(map[string]string{"signature": "only"})
	assert.Error(t, err)
}

func TestVerify_RoundTrip(t *testing.T) {
	signer := NewSigner("jt7NOE43FZPn")

	digest, err := signer.Sign(sandboxFields)
	assert.NoError(t, err)

	params := map[string]string{"signature": digest}
	for k, v := range sandboxFields {
		params[k] = v
	}
	assert.True(t, signer.Verify(params, digest))
	assert.False(t, signer.Verify(params, "0123456789abcdef0123456789abcdef"))
	assert.False(t, signer.Verify(params, ""))
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "Test+Payment", EncodeComponent("Test Payment"))
	assert.Equal(t, "buyer%40sandbox.test", EncodeComponent("buyer@sandbox.test"))
	assert.Equal(t, "O'Neil+%26+Sons+(fees)", EncodeComponent("O'Neil & Sons (fees)"))
	assert.Equal(t, "100.00", EncodeComponent("100.00"))
}
