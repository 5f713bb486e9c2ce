package batchprocessor

import (
	"sync"

	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
)

// batchProcessor owns a private UTXO set and applies batches of candidate
// transactions to it. A batch is processed under the write lock, so batches
// never interleave.
type batchProcessor struct {
	lock sync.RWMutex

	utxoSet              externalapi.UTXOSet
	transactionValidator model.TransactionValidator
	feeRanker            model.FeeRanker
}

// New instantiates a new BatchProcessor over an independent copy of utxoSet.
// Later changes to utxoSet are not seen by the processor, and the processor's
// changes are not seen through utxoSet.
func New(utxoSet externalapi.ReadOnlyUTXOSet, transactionValidator model.TransactionValidator,
	feeRanker model.FeeRanker) model.BatchProcessor {

	var ownedUTXOSet externalapi.UTXOSet
	if utxoSet == nil {
		ownedUTXOSet = utxo.NewCollection()
	} else {
		ownedUTXOSet = utxoSet.Clone()
	}

	return &batchProcessor{
		utxoSet:              ownedUTXOSet,
		transactionValidator: transactionValidator,
		feeRanker:            feeRanker,
	}
}

// IsValid returns whether tx is valid against the current UTXO set.
func (bp *batchProcessor) IsValid(tx *externalapi.DomainTransaction) bool {
	bp.lock.RLock()
	defer bp.lock.RUnlock()

	return bp.transactionValidator.IsValid(tx, bp.utxoSet)
}

// ValidateTransaction validates tx against the current UTXO set and returns its fee.
func (bp *batchProcessor) ValidateTransaction(tx *externalapi.DomainTransaction) (int64, error) {
	bp.lock.RLock()
	defer bp.lock.RUnlock()

	return bp.transactionValidator.ValidateTransaction(tx, bp.utxoSet)
}

// Process applies the valid subset of candidates to the UTXO set and returns
// it ordered by descending fee.
func (bp *batchProcessor) Process(candidates []*externalapi.DomainTransaction) []*externalapi.DomainTransaction {
	return bp.ProcessWithReport(candidates).AcceptedTransactions()
}

// ProcessWithReport is like Process, but also reports the fee and batch index
// of every accepted transaction and the reason every rejected one was rejected.
func (bp *batchProcessor) ProcessWithReport(candidates []*externalapi.DomainTransaction) *model.BatchResult {
	onEnd := logger.LogAndMeasureItemsExecutionTime(log, "ProcessWithReport", len(candidates))
	defer onEnd()

	bp.lock.Lock()
	defer bp.lock.Unlock()

	result := bp.applyCandidates(candidates)
	bp.feeRanker.SortByFeeDescending(result.Accepted)

	log.Debugf("Accepted %d out of %d candidates paying %d in fees",
		len(result.Accepted), len(candidates), result.TotalFees())
	return result
}

// applyCandidates validates every candidate in batch order against the UTXO
// set as left by the candidates before it, and applies each valid one
// immediately. Of two candidates spending the same outpoint, the first in
// the batch is accepted and the second is rejected as missing its input,
// whatever their fees.
func (bp *batchProcessor) applyCandidates(candidates []*externalapi.DomainTransaction) *model.BatchResult {
	result := &model.BatchResult{
		Accepted: make([]*model.AcceptedTransaction, 0, len(candidates)),
	}
	for batchIndex, tx := range candidates {
		_, err := bp.transactionValidator.ValidateTransaction(tx, bp.utxoSet)
		var fee int64
		if err == nil {
			// The fee must be taken here, before applying tx removes the
			// entries it was computed from.
			fee, err = bp.feeRanker.Fee(tx, bp.utxoSet)
		}
		if err != nil {
			log.Debugf("Rejected candidate %d: %s", batchIndex, err)
			result.Rejected = append(result.Rejected, &model.RejectedTransaction{
				Transaction: tx,
				BatchIndex:  batchIndex,
				Error:       err,
			})
			continue
		}

		txID := consensushashing.TransactionID(tx)
		bp.utxoSet.AddTransaction(tx, txID)
		log.Tracef("Accepted candidate %d %s with fee %d", batchIndex, txID, fee)

		result.Accepted = append(result.Accepted, &model.AcceptedTransaction{
			Transaction: tx,
			ID:          txID,
			Fee:         fee,
			BatchIndex:  batchIndex,
		})
	}
	return result
}

// UTXOSet returns an independent copy of the current UTXO set.
func (bp *batchProcessor) UTXOSet() externalapi.UTXOSet {
	bp.lock.RLock()
	defer bp.lock.RUnlock()

	return bp.utxoSet.Clone()
}
