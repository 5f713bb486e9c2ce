package transactionvalidator

import (
	"math"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateTransactionInIsolation runs every check that does not need the UTXO set.
func (v *transactionValidator) ValidateTransactionInIsolation(tx *externalapi.DomainTransaction) error {
	err := checkTransactionStructure(tx)
	if err != nil {
		return err
	}

	err = checkDuplicateTransactionInputs(tx)
	if err != nil {
		return err
	}

	_, err = checkTransactionOutputAmounts(tx)
	if err != nil {
		return err
	}

	return nil
}

func checkTransactionStructure(tx *externalapi.DomainTransaction) error {
	if tx == nil {
		return errors.Wrap(ruleerrors.ErrMalformedTransaction, "transaction is nil")
	}
	for i, input := range tx.Inputs {
		if input == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d is nil", i)
		}
	}
	for i, output := range tx.Outputs {
		if output == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "output %d is nil", i)
		}
	}
	return nil
}

func checkDuplicateTransactionInputs(tx *externalapi.DomainTransaction) error {
	existingTxOut := make(map[externalapi.DomainOutpoint]struct{}, len(tx.Inputs))
	for _, txIn := range tx.Inputs {
		if _, exists := existingTxOut[txIn.PreviousOutpoint]; exists {
			return errors.Wrapf(ruleerrors.ErrDuplicateTxInputs, "transaction "+
				"contains duplicate inputs of %s", txIn.PreviousOutpoint)
		}
		existingTxOut[txIn.PreviousOutpoint] = struct{}{}
	}
	return nil
}

// checkTransactionOutputAmounts makes sure every output value is
// non-negative and that their sum fits in an int64, and returns the sum.
func checkTransactionOutputAmounts(tx *externalapi.DomainTransaction) (totalValueOut int64, err error) {
	for i, txOut := range tx.Outputs {
		if txOut.Value < 0 {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "transaction "+
				"output %d has negative value of %d", i, txOut.Value)
		}

		if totalValueOut > math.MaxInt64-txOut.Value {
			return 0, errors.Wrapf(ruleerrors.ErrBadTxOutValue, "total value of all "+
				"transaction outputs overflows at output %d", i)
		}
		totalValueOut += txOut.Value
	}
	return totalValueOut, nil
}
