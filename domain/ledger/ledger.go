// Package ledger validates batches of candidate transactions against a UTXO
// set and applies the accepted ones.
//
// Within a batch, candidates are validated in the order given, each against
// the UTXO set as left by the candidates accepted before it. When two
// candidates spend the same output the first one wins, regardless of fees.
// The accepted transactions are then reported ordered by descending fee,
// with ties kept in batch order.
package ledger

import (
	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/batchprocessor"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/feeranker"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/transactionvalidator"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/txsig"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
)

// Ledger is the entry point for validating and processing transactions.
// It is safe for concurrent use; batches are processed one at a time.
type Ledger struct {
	batchProcessor model.BatchProcessor
}

// New returns a Ledger over an independent copy of utxoSet, verifying
// Schnorr signatures.
func New(utxoSet externalapi.ReadOnlyUTXOSet) *Ledger {
	return NewWithSignatureVerifier(utxoSet, txsig.SchnorrVerifier{})
}

// NewWithSignatureVerifier returns a Ledger over an independent copy of
// utxoSet, verifying signatures with signatureVerifier.
func NewWithSignatureVerifier(utxoSet externalapi.ReadOnlyUTXOSet, signatureVerifier model.SignatureVerifier) *Ledger {
	transactionValidator := transactionvalidator.New(signatureVerifier)
	return &Ledger{
		batchProcessor: batchprocessor.New(utxoSet, transactionValidator, feeranker.New()),
	}
}

// IsValid returns whether tx is valid against the current UTXO set.
func (l *Ledger) IsValid(tx *externalapi.DomainTransaction) bool {
	return l.batchProcessor.IsValid(tx)
}

// ValidateTransaction returns the fee tx would pay against the current UTXO
// set, or the rule it violates. It returns a nil error iff IsValid(tx).
func (l *Ledger) ValidateTransaction(tx *externalapi.DomainTransaction) (fee int64, err error) {
	return l.batchProcessor.ValidateTransaction(tx)
}

// Process applies the valid subset of candidates to the UTXO set and returns
// it ordered by descending fee.
func (l *Ledger) Process(candidates []*externalapi.DomainTransaction) []*externalapi.DomainTransaction {
	return l.batchProcessor.Process(candidates)
}

// ProcessWithReport is like Process but also reports fees and rejection reasons.
func (l *Ledger) ProcessWithReport(candidates []*externalapi.DomainTransaction) *model.BatchResult {
	result := l.batchProcessor.ProcessWithReport(candidates)
	log.Infof("Processed batch of %d candidates: %d accepted, %d rejected, %d in fees",
		len(candidates), len(result.Accepted), len(result.Rejected), result.TotalFees())
	return result
}

// UTXOSet returns an independent copy of the current UTXO set.
func (l *Ledger) UTXOSet() externalapi.UTXOSet {
	return l.batchProcessor.UTXOSet()
}

// UTXOCommitment returns the muhash commitment of the current UTXO set.
func (l *Ledger) UTXOCommitment() (*externalapi.DomainHash, error) {
	return utxo.Commitment(l.batchProcessor.UTXOSet())
}
