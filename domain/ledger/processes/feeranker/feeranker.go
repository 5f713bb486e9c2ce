package feeranker

import (
	"math"
	"sort"

	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/ruleerrors"
	"github.com/pkg/errors"
)

type feeRanker struct{}

// New instantiates a new FeeRanker
func New() model.FeeRanker {
	return &feeRanker{}
}

// Fee returns the value tx claims from utxoSet minus the value of its
// outputs. It does not validate signatures, duplicate inputs or the sign of
// the result. A nil transaction, input or output, a negative value or a sum
// that overflows an int64 returns an error instead of a fee.
func (fr *feeRanker) Fee(tx *externalapi.DomainTransaction, utxoSet externalapi.ReadOnlyUTXOSet) (int64, error) {
	if tx == nil {
		return 0, errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction is nil")
	}

	totalValueIn := int64(0)
	for i, input := range tx.Inputs {
		if input == nil {
			return 0, errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d is nil", i)
		}
		var entry externalapi.UTXOEntry
		ok := false
		if utxoSet != nil {
			entry, ok = utxoSet.Get(&input.PreviousOutpoint)
		}
		if !ok || entry == nil {
			outpoint := input.PreviousOutpoint
			return 0, ruleerrors.NewErrMissingTxOut([]*externalapi.DomainOutpoint{&outpoint})
		}
		amount := entry.Amount()
		if amount < 0 {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "input %d spends an "+
				"entry with negative amount %d", i, amount)
		}
		if totalValueIn > math.MaxInt64-amount {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all "+
				"transaction inputs overflows at input %d", i)
		}
		totalValueIn += amount
	}

	totalValueOut := int64(0)
	for i, output := range tx.Outputs {
		if output == nil {
			return 0, errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d is nil", i)
		}
		if output.Value < 0 {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "transaction "+
				"output %d has negative value of %d", i, output.Value)
		}
		if totalValueOut > math.MaxInt64-output.Value {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all "+
				"transaction outputs overflows at output %d", i)
		}
		totalValueOut += output.Value
	}
	return totalValueIn - totalValueOut, nil
}

// SortByFeeDescending orders accepted by descending fee. Transactions with
// equal fees keep their relative order, which for a processed batch is the
// order they appeared in the batch.
func (fr *feeRanker) SortByFeeDescending(accepted []*model.AcceptedTransaction) {
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Fee > accepted[j].Fee
	})
}
