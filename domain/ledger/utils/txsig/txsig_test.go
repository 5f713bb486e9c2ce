package txsig

import (
	"bytes"
	"testing"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
)

func TestSignAndVerify(t *testing.T) {
	keyPair, publicKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	_, otherPublicKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}

	payload := []byte("pay 4 to B")
	signature, err := Sign(payload, keyPair)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	if len(signature) != SignatureSize {
		t.Fatalf("expected a %d byte signature, got %d bytes", SignatureSize, len(signature))
	}

	verifier := SchnorrVerifier{}
	if !verifier.Verify(payload, signature, publicKey) {
		t.Fatalf("a valid signature did not verify")
	}

	tests := []struct {
		name      string
		payload   []byte
		signature []byte
		publicKey []byte
	}{
		{"other payload", []byte("pay 9 to C"), signature, publicKey},
		{"other key", payload, signature, otherPublicKey},
		{"flipped signature bit", payload, flipBit(signature), publicKey},
		{"short signature", payload, signature[:10], publicKey},
		{"empty signature", payload, nil, publicKey},
		{"short key", payload, signature, publicKey[:31]},
		{"garbage key", payload, signature, bytes.Repeat([]byte{0xff}, PublicKeySize)},
	}
	for _, test := range tests {
		if verifier.Verify(test.payload, test.signature, test.publicKey) {
			t.Errorf("%s: expected verification to fail", test.name)
		}
	}
}

func TestKeyPairFromPrivateKey(t *testing.T) {
	keyPair, publicKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	restored, err := KeyPairFromPrivateKey(SerializedPrivateKey(keyPair))
	if err != nil {
		t.Fatalf("KeyPairFromPrivateKey: %+v", err)
	}
	restoredPublicKey, err := SerializedPublicKey(restored)
	if err != nil {
		t.Fatalf("SerializedPublicKey: %+v", err)
	}
	if !bytes.Equal(publicKey, restoredPublicKey) {
		t.Fatalf("restored key pair has a different public key")
	}

	_, err = KeyPairFromPrivateKey([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("KeyPairFromPrivateKey: expected an error for a short key")
	}
}

func TestSignInput(t *testing.T) {
	keyPair, publicKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	tx := &externalapi.DomainTransaction{
		Inputs: []*externalapi.DomainTransactionInput{
			{PreviousOutpoint: externalapi.DomainOutpoint{Index: 0}},
			{PreviousOutpoint: externalapi.DomainOutpoint{Index: 1}},
		},
		Outputs: []*externalapi.DomainTransactionOutput{{Value: 1, PublicKey: publicKey}},
	}
	for i := range tx.Inputs {
		err := SignInput(tx, i, keyPair)
		if err != nil {
			t.Fatalf("SignInput(%d): %+v", i, err)
		}
	}

	verifier := SchnorrVerifier{}
	for i, input := range tx.Inputs {
		payload, err := consensushashing.SignablePayload(tx, i)
		if err != nil {
			t.Fatalf("SignablePayload: %+v", err)
		}
		if !verifier.Verify(payload, input.Signature, publicKey) {
			t.Errorf("input %d: signature does not verify", i)
		}
	}

	// A signature is bound to its input index.
	payload, err := consensushashing.SignablePayload(tx, 1)
	if err != nil {
		t.Fatalf("SignablePayload: %+v", err)
	}
	if verifier.Verify(payload, tx.Inputs[0].Signature, publicKey) {
		t.Fatalf("signature of input 0 verified for input 1")
	}

	if err := SignInput(tx, 2, keyPair); err == nil {
		t.Fatalf("SignInput: expected an error for an out of range input")
	}
}

func flipBit(signature []byte) []byte {
	flipped := make([]byte, len(signature))
	copy(flipped, signature)
	flipped[len(flipped)-1] ^= 1
	return flipped
}
