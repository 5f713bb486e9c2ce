package model

import "github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"

// TransactionValidator checks a single transaction against a snapshot of
// the UTXO set without modifying it.
type TransactionValidator interface {
	// IsValid is the boolean form of ValidateTransaction.
	IsValid(tx *externalapi.DomainTransaction, utxoSet externalapi.ReadOnlyUTXOSet) bool

	// ValidateTransaction returns the fee the transaction pays against utxoSet,
	// or a ruleerrors.RuleError describing the first violated rule.
	ValidateTransaction(tx *externalapi.DomainTransaction, utxoSet externalapi.ReadOnlyUTXOSet) (fee int64, err error)
}
