package model

import (
	"fmt"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
)

// AcceptedTransaction is a transaction that was applied to the UTXO set,
// together with the fee it paid against the UTXO set as it was right before
// the transaction was applied.
type AcceptedTransaction struct {
	Transaction *externalapi.DomainTransaction
	ID          *externalapi.DomainTransactionID
	Fee         int64

	// BatchIndex is the position of the transaction in the candidate batch.
	BatchIndex int
}

func (accepted *AcceptedTransaction) String() string {
	return fmt.Sprintf("(%s fee: %d, batch index: %d)", accepted.ID, accepted.Fee, accepted.BatchIndex)
}

// RejectedTransaction is a candidate that failed validation, with the rule it violated.
type RejectedTransaction struct {
	Transaction *externalapi.DomainTransaction
	BatchIndex  int
	Error       error
}

func (rejected *RejectedTransaction) String() string {
	return fmt.Sprintf("(batch index %d: %s)", rejected.BatchIndex, rejected.Error)
}

// BatchResult is the outcome of processing one batch. Accepted is ordered by
// descending fee, Rejected by batch order.
type BatchResult struct {
	Accepted []*AcceptedTransaction
	Rejected []*RejectedTransaction
}

// AcceptedTransactions returns the accepted transactions in the order of Accepted.
func (result *BatchResult) AcceptedTransactions() []*externalapi.DomainTransaction {
	transactions := make([]*externalapi.DomainTransaction, len(result.Accepted))
	for i, accepted := range result.Accepted {
		transactions[i] = accepted.Transaction
	}
	return transactions
}

// TotalFees returns the sum of the fees of all accepted transactions.
func (result *BatchResult) TotalFees() int64 {
	total := int64(0)
	for _, accepted := range result.Accepted {
		total += accepted.Fee
	}
	return total
}
