package utxo

import (
	"bytes"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
)

type utxoEntry struct {
	amount    int64
	publicKey []byte
}

// NewUTXOEntry creates a new utxoEntry representing the given output.
func NewUTXOEntry(amount int64, publicKey []byte) externalapi.UTXOEntry {
	publicKeyClone := make([]byte, len(publicKey))
	copy(publicKeyClone, publicKey)
	return &utxoEntry{
		amount:    amount,
		publicKey: publicKeyClone,
	}
}

// NewUTXOEntryFromOutput creates the UTXO entry a transaction output becomes once applied.
func NewUTXOEntryFromOutput(output *externalapi.DomainTransactionOutput) externalapi.UTXOEntry {
	return NewUTXOEntry(output.Value, output.PublicKey)
}

func (u *utxoEntry) Amount() int64 {
	return u.amount
}

func (u *utxoEntry) PublicKey() []byte {
	clone := make([]byte, len(u.publicKey))
	copy(clone, u.publicKey)
	return clone
}

func (u *utxoEntry) Equal(other externalapi.UTXOEntry) bool {
	if u == nil || other == nil {
		return u == nil && other == nil
	}

	otherEntry, ok := other.(*utxoEntry)
	if !ok {
		return u.amount == other.Amount() && bytes.Equal(u.publicKey, other.PublicKey())
	}
	if otherEntry == nil {
		return false
	}
	return u.amount == otherEntry.amount && bytes.Equal(u.publicKey, otherEntry.publicKey)
}
