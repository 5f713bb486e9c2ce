package model

import "github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"

// BatchProcessor owns a UTXO set and applies batches of candidate
// transactions to it.
type BatchProcessor interface {
	IsValid(tx *externalapi.DomainTransaction) bool
	ValidateTransaction(tx *externalapi.DomainTransaction) (fee int64, err error)
	Process(candidates []*externalapi.DomainTransaction) []*externalapi.DomainTransaction
	ProcessWithReport(candidates []*externalapi.DomainTransaction) *BatchResult
	UTXOSet() externalapi.UTXOSet
}
