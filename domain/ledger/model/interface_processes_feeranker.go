package model

import "github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"

// FeeRanker computes transaction fees and orders accepted transactions by them.
type FeeRanker interface {
	Fee(tx *externalapi.DomainTransaction, utxoSet externalapi.ReadOnlyUTXOSet) (int64, error)
	SortByFeeDescending(accepted []*AcceptedTransaction)
}
