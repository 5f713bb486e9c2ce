package transactionvalidator

import (
	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/txsig"
)

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether a transaction is valid against a UTXO set
type transactionValidator struct {
	signatureVerifier model.SignatureVerifier
}

// New instantiates a new TransactionValidator that checks signatures with signatureVerifier.
func New(signatureVerifier model.SignatureVerifier) model.TransactionValidator {
	return &transactionValidator{
		signatureVerifier: signatureVerifier,
	}
}

// NewWithSchnorr instantiates a new TransactionValidator that checks Schnorr signatures.
func NewWithSchnorr() model.TransactionValidator {
	return New(txsig.SchnorrVerifier{})
}

// IsValid returns whether tx is valid against utxoSet. It never modifies utxoSet.
func (v *transactionValidator) IsValid(tx *externalapi.DomainTransaction, utxoSet externalapi.ReadOnlyUTXOSet) bool {
	_, err := v.ValidateTransaction(tx, utxoSet)
	if err != nil {
		log.Tracef("Transaction rejected: %s", err)
		return false
	}
	return true
}

// ValidateTransaction validates tx against utxoSet and returns the fee it pays.
// It never modifies utxoSet.
func (v *transactionValidator) ValidateTransaction(tx *externalapi.DomainTransaction,
	utxoSet externalapi.ReadOnlyUTXOSet) (fee int64, err error) {

	err = v.ValidateTransactionInIsolation(tx)
	if err != nil {
		return 0, err
	}
	return v.ValidateTransactionInContext(tx, utxoSet)
}
