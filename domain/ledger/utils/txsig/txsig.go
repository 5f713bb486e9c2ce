package txsig

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/hashes"
	"github.com/pkg/errors"
)

// PublicKeySize is the size of a serialized Schnorr public key.
const PublicKeySize = 32

// SignatureSize is the size of a serialized Schnorr signature.
const SignatureSize = secp256k1.SerializedSchnorrSignatureSize

// SchnorrVerifier verifies BIP-340 style Schnorr signatures over the
// blake2b digest of a payload.
type SchnorrVerifier struct{}

// Verify returns whether signature is a valid signature of payload by publicKey.
// Malformed keys and signatures are reported as invalid.
func (SchnorrVerifier) Verify(payload []byte, signature []byte, publicKey []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	pubKey, err := secp256k1.DeserializeSchnorrPubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature)
	if err != nil {
		return false
	}
	hash := payloadHash(payload)
	return pubKey.SchnorrVerify(hash, sig)
}

// Sign signs payload with keyPair.
func Sign(payload []byte, keyPair *secp256k1.SchnorrKeyPair) ([]byte, error) {
	signature, err := keyPair.SchnorrSign(payloadHash(payload))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	serialized := signature.Serialize()
	return serialized[:], nil
}

// SignInput sets the signature of the input at inputIndex in tx. Since the
// signable payload excludes signatures, inputs may be signed in any order.
func SignInput(tx *externalapi.DomainTransaction, inputIndex int, keyPair *secp256k1.SchnorrKeyPair) error {
	payload, err := consensushashing.SignablePayload(tx, inputIndex)
	if err != nil {
		return err
	}
	signature, err := Sign(payload, keyPair)
	if err != nil {
		return err
	}
	tx.Inputs[inputIndex].Signature = signature
	return nil
}

// GenerateKeyPair generates a new random key pair and returns it along with
// its serialized public key.
func GenerateKeyPair() (*secp256k1.SchnorrKeyPair, []byte, error) {
	keyPair, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate a private key")
	}
	publicKey, err := SerializedPublicKey(keyPair)
	if err != nil {
		return nil, nil, err
	}
	return keyPair, publicKey, nil
}

// KeyPairFromPrivateKey deserializes a 32 byte private key.
func KeyPairFromPrivateKey(privateKey []byte) (*secp256k1.SchnorrKeyPair, error) {
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize private key")
	}
	return keyPair, nil
}

// SerializedPublicKey returns the serialized public key of keyPair.
func SerializedPublicKey(keyPair *secp256k1.SchnorrKeyPair) ([]byte, error) {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive public key")
	}
	serialized, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize public key")
	}
	return serialized[:], nil
}

func payloadHash(payload []byte) *secp256k1.Hash {
	writer := hashes.NewPayloadSigningHashWriter()
	writer.InfallibleWrite(payload)
	secpHash := secp256k1.Hash(*writer.Finalize().ByteArray())
	return &secpHash
}

// SerializedPrivateKey returns the 32 byte private key of keyPair.
func SerializedPrivateKey(keyPair *secp256k1.SchnorrKeyPair) []byte {
	return keyPair.SerializePrivateKey()[:]
}
