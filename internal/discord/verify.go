package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Verifier checks the detached ed25519 signature Discord attaches to every
// interaction webhook. The signed message is the timestamp header concatenated
// with the raw request body; the body must not be re-serialized before
// verification.
type Verifier struct {
	key ed25519.PublicKey
}

// NewVerifier parses the hex-encoded application public key. An empty key is
// rejected here so a misconfigured deployment fails at startup instead of
// silently accepting traffic.
func NewVerifier(hexKey string) (*Verifier, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("discord public key is empty")
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return &Verifier{key: ed25519.PublicKey(raw)}, nil
}

// Verify reports whether signature is a valid signature over timestamp||body.
// It fails closed: any decode problem, a nil verifier or a missing key all
// yield false, never an error.
func (v *Verifier) Verify(signature, timestamp string, body []byte) bool {
	if v == nil || len(v.key) != ed25519.PublicKeySize {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(v.key, msg, sig)
}
