package transactionvalidator

import (
	"math"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/ruleerrors"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/pkg/errors"
)

// ValidateTransactionInContext validates tx against the entries it spends in
// utxoSet and returns the fee it pays. It assumes tx already passed
// ValidateTransactionInIsolation.
func (v *transactionValidator) ValidateTransactionInContext(tx *externalapi.DomainTransaction,
	utxoSet externalapi.ReadOnlyUTXOSet) (fee int64, err error) {

	entries, err := referencedUTXOEntries(tx, utxoSet)
	if err != nil {
		return 0, err
	}

	err = v.validateTransactionSignatures(tx, entries)
	if err != nil {
		return 0, err
	}

	totalValueIn, err := checkTransactionInputAmounts(entries)
	if err != nil {
		return 0, err
	}

	totalValueOut, err := checkTransactionOutputAmounts(tx)
	if err != nil {
		return 0, err
	}

	// Ensure the transaction does not spend more than its inputs.
	if totalValueIn < totalValueOut {
		return 0, errors.Wrapf(ruleerrors.ErrSpendTooHigh, "total value of all transaction inputs for "+
			"the transaction is %d which is less than the amount "+
			"spent of %d", totalValueIn, totalValueOut)
	}

	return totalValueIn - totalValueOut, nil
}

// referencedUTXOEntries returns the entry spent by every input of tx, in input order.
func referencedUTXOEntries(tx *externalapi.DomainTransaction,
	utxoSet externalapi.ReadOnlyUTXOSet) ([]externalapi.UTXOEntry, error) {

	entries := make([]externalapi.UTXOEntry, len(tx.Inputs))
	var missingOutpoints []*externalapi.DomainOutpoint
	for i, input := range tx.Inputs {
		var entry externalapi.UTXOEntry
		ok := false
		if utxoSet != nil {
			entry, ok = utxoSet.Get(&input.PreviousOutpoint)
		}
		if !ok || entry == nil {
			outpoint := input.PreviousOutpoint
			missingOutpoints = append(missingOutpoints, &outpoint)
			continue
		}
		entries[i] = entry
	}
	if len(missingOutpoints) > 0 {
		return nil, ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}
	return entries, nil
}

func (v *transactionValidator) validateTransactionSignatures(tx *externalapi.DomainTransaction,
	entries []externalapi.UTXOEntry) error {

	for i, input := range tx.Inputs {
		payload, err := consensushashing.SignablePayload(tx, i)
		if err != nil {
			return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "input %d: %s", i, err)
		}

		if !v.signatureVerifier.Verify(payload, input.Signature, entries[i].PublicKey()) {
			return errors.Wrapf(ruleerrors.ErrScriptValidation, "failed to validate input "+
				"%d which references output %s (signature bytes %x, public key bytes %x)",
				i, input.PreviousOutpoint, input.Signature, entries[i].PublicKey())
		}
	}
	return nil
}

func checkTransactionInputAmounts(entries []externalapi.UTXOEntry) (totalValueIn int64, err error) {
	for i, entry := range entries {
		amount := entry.Amount()
		// Entries are created from validated outputs, so a negative amount
		// means the UTXO set was seeded with a corrupt entry.
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
	return totalValueIn, nil
}
