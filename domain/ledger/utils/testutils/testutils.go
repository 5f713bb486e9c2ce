// Package testutils builds keys, UTXO sets and signed transactions for tests.
package testutils

import (
	"testing"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/txsig"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
)

// Key is a key pair together with its serialized public key.
type Key struct {
	KeyPair   *secp256k1.SchnorrKeyPair
	PublicKey []byte
}

// NewKey generates a new random Key, failing the test on error.
func NewKey(t testing.TB) *Key {
	keyPair, publicKey, err := txsig.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	return &Key{KeyPair: keyPair, PublicKey: publicKey}
}

// GenesisOutpoint returns a deterministic outpoint that is not the output
// of any real transaction, for seeding UTXO sets.
func GenesisOutpoint(seed byte, index uint32) externalapi.DomainOutpoint {
	return externalapi.DomainOutpoint{
		TransactionID: *externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{0xee, seed}),
		Index:         index,
	}
}

// Spend describes an input: the outpoint it claims and the key that signs it.
// A nil Key leaves the input unsigned.
type Spend struct {
	Outpoint externalapi.DomainOutpoint
	Key      *Key
}

// Pay describes an output.
type Pay struct {
	Value int64
	To    *Key
}

// NewTransaction builds a transaction with the given inputs and outputs and
// signs every input whose Spend has a Key.
func NewTransaction(t testing.TB, spends []Spend, pays []Pay) *externalapi.DomainTransaction {
	tx := &externalapi.DomainTransaction{
		Inputs:  make([]*externalapi.DomainTransactionInput, len(spends)),
		Outputs: make([]*externalapi.DomainTransactionOutput, len(pays)),
	}
	for i, spend := range spends {
		tx.Inputs[i] = &externalapi.DomainTransactionInput{PreviousOutpoint: spend.Outpoint}
	}
	for i, pay := range pays {
		tx.Outputs[i] = &externalapi.DomainTransactionOutput{Value: pay.Value, PublicKey: pay.To.PublicKey}
	}
	for i, spend := range spends {
		if spend.Key == nil {
			continue
		}
		err := txsig.SignInput(tx, i, spend.Key.KeyPair)
		if err != nil {
			t.Fatalf("SignInput: %+v", err)
		}
	}
	return tx
}

// OutputOf returns the outpoint of output index of tx.
func OutputOf(tx *externalapi.DomainTransaction, index uint32) externalapi.DomainOutpoint {
	return *externalapi.NewDomainOutpoint(consensushashing.TransactionID(tx), index)
}

// Entry describes a UTXO set entry.
type Entry struct {
	Outpoint externalapi.DomainOutpoint
	Amount   int64
	Owner    *Key
}

// NewUTXOSet builds a utxo.Collection holding entries.
func NewUTXOSet(entries ...Entry) utxo.Collection {
	collection := utxo.NewCollection()
	for _, entry := range entries {
		outpoint := entry.Outpoint
		collection.Add(&outpoint, utxo.NewUTXOEntry(entry.Amount, entry.Owner.PublicKey))
	}
	return collection
}
