package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"campus-canteen/internal/models"
)

var (
	// ErrMalformedProof signals a proof with a missing or empty field
	ErrMalformedProof = errors.New("malformed payment proof")
	// ErrSignatureMismatch signals a forged or tampered proof
	ErrSignatureMismatch = errors.New("payment signature mismatch")
)

// Verifier checks the gateway's cryptographic proof of payment. It is
// the sole trust boundary between the client relay and the order
// ledger; it has no side effects.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier keyed by the deployment secret shared
// with the gateway
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign computes the expected hex signature over the canonical
// order-reference|payment-reference string
func (v *Verifier) Sign(gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the HMAC and compares it constant-time against the
// relayed signature
func (v *Verifier) Verify(proof models.PaymentProof) (models.VerifiedPayment, error) {
	if proof.GatewayOrderID == "" || proof.GatewayPaymentID == "" || proof.Signature == "" {
		return models.VerifiedPayment{}, ErrMalformedProof
	}

	expected := v.Sign(proof.GatewayOrderID, proof.GatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return models.VerifiedPayment{}, ErrSignatureMismatch
	}

	return models.VerifiedPayment{
		GatewayOrderID:   proof.GatewayOrderID,
		GatewayPaymentID: proof.GatewayPaymentID,
	}, nil
}
