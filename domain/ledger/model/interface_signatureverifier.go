package model

// SignatureVerifier verifies that signature authenticates payload under publicKey.
// Implementations must return false rather than fail on malformed keys or signatures.
type SignatureVerifier interface {
	Verify(payload []byte, signature []byte, publicKey []byte) bool
}
