package batchprocessor_test

import (
	"sync"
	"testing"

	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/batchprocessor"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/feeranker"
	"github.com/kaspanet/ledgerselect/domain/ledger/processes/transactionvalidator"
	"github.com/kaspanet/ledgerselect/domain/ledger/ruleerrors"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/testutils"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
	"github.com/pkg/errors"
)

func newTestBatchProcessor(utxoSet externalapi.ReadOnlyUTXOSet) model.BatchProcessor {
	return batchprocessor.New(utxoSet, transactionvalidator.NewWithSchnorr(), feeranker.New())
}

func assertSameUTXOSet(t *testing.T, got, expected externalapi.ReadOnlyUTXOSet) {
	gotCommitment, err := utxo.Commitment(got)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	expectedCommitment, err := utxo.Commitment(expected)
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	if !gotCommitment.Equal(expectedCommitment) {
		t.Fatalf("UTXO sets differ")
	}
}

func TestFirstSeenWinsOverHigherFee(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	keyC := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})

	txX := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 4, To: keyB}})
	txY := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 9, To: keyC}})

	processor := newTestBatchProcessor(utxoSet)
	if !processor.IsValid(txX) || !processor.IsValid(txY) {
		t.Fatalf("both candidates should be valid on their own")
	}

	result := processor.ProcessWithReport([]*externalapi.DomainTransaction{txX, txY})
	if len(result.Accepted) != 1 || result.Accepted[0].Transaction != txX {
		t.Fatalf("expected only TxX to be accepted, got %v", result.Accepted)
	}
	if result.Accepted[0].Fee != 6 {
		t.Fatalf("expected TxX's fee to be 6 but got %d", result.Accepted[0].Fee)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Transaction != txY || result.Rejected[0].BatchIndex != 1 {
		t.Fatalf("expected TxY to be rejected, got %v", result.Rejected)
	}
	var missingErr ruleerrors.ErrMissingTxOut
	if !errors.As(result.Rejected[0].Error, &missingErr) {
		t.Fatalf("expected TxY to be rejected for a missing outpoint, got %v", result.Rejected[0].Error)
	}

	current := processor.UTXOSet()
	if current.Contains(&u1) {
		t.Fatalf("U1 is still unspent")
	}
	txXOutput := testutils.OutputOf(txX, 0)
	if !current.Contains(&txXOutput) {
		t.Fatalf("TxX's output is missing")
	}
	txYOutput := testutils.OutputOf(txY, 0)
	if current.Contains(&txYOutput) {
		t.Fatalf("rejected TxY's output was added")
	}

	// The order of the batch, not the fee, decides.
	reversed := newTestBatchProcessor(utxoSet)
	accepted := reversed.Process([]*externalapi.DomainTransaction{txY, txX})
	if len(accepted) != 1 || accepted[0] != txY {
		t.Fatalf("expected only TxY to be accepted in the reversed batch, got %v", accepted)
	}
}

func TestInvalidSignatureLeavesUTXOSetUnchanged(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 5, Owner: keyA})

	tx := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyB}},
		[]testutils.Pay{{Value: 5, To: keyB}})

	processor := newTestBatchProcessor(utxoSet)
	if processor.IsValid(tx) {
		t.Fatalf("a transaction signed by the wrong key is valid")
	}
	accepted := processor.Process([]*externalapi.DomainTransaction{tx})
	if len(accepted) != 0 {
		t.Fatalf("expected nothing to be accepted, got %v", accepted)
	}
	assertSameUTXOSet(t, processor.UTXOSet(), utxoSet)
}

func TestIntraTransactionDoubleSpend(t *testing.T) {
	keyA := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 5, Owner: keyA})

	tx := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}, {Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 1, To: keyA}})

	processor := newTestBatchProcessor(utxoSet)
	if processor.IsValid(tx) {
		t.Fatalf("a transaction claiming U1 twice is valid")
	}
	_, err := processor.ValidateTransaction(tx)
	if !errors.Is(err, ruleerrors.ErrDuplicateTxInputs) {
		t.Fatalf("expected ErrDuplicateTxInputs but got %v", err)
	}
}

func TestAcceptedAreSortedByFee(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	outpoints := []externalapi.DomainOutpoint{
		testutils.GenesisOutpoint(1, 0),
		testutils.GenesisOutpoint(2, 0),
		testutils.GenesisOutpoint(3, 0),
		testutils.GenesisOutpoint(4, 0),
	}
	entries := make([]testutils.Entry, len(outpoints))
	for i, outpoint := range outpoints {
		entries[i] = testutils.Entry{Outpoint: outpoint, Amount: 10, Owner: keyA}
	}
	utxoSet := testutils.NewUTXOSet(entries...)

	fees := []int64{2, 7, 2, 9}
	candidates := make([]*externalapi.DomainTransaction, len(outpoints))
	for i, outpoint := range outpoints {
		candidates[i] = testutils.NewTransaction(t,
			[]testutils.Spend{{Outpoint: outpoint, Key: keyA}},
			[]testutils.Pay{{Value: 10 - fees[i], To: keyB}})
	}

	result := newTestBatchProcessor(utxoSet).ProcessWithReport(candidates)
	expectedBatchIndexes := []int{3, 1, 0, 2}
	if len(result.Accepted) != len(expectedBatchIndexes) {
		t.Fatalf("expected %d accepted transactions but got %d", len(expectedBatchIndexes), len(result.Accepted))
	}
	for i, expectedBatchIndex := range expectedBatchIndexes {
		accepted := result.Accepted[i]
		if accepted.BatchIndex != expectedBatchIndex {
			t.Fatalf("position %d: expected batch index %d but got %s", i, expectedBatchIndex, accepted)
		}
		if accepted.Transaction != candidates[expectedBatchIndex] {
			t.Fatalf("position %d: wrong transaction", i)
		}
		if accepted.Fee != fees[expectedBatchIndex] {
			t.Fatalf("position %d: expected fee %d but got %d", i, fees[expectedBatchIndex], accepted.Fee)
		}
		if !accepted.ID.Equal(consensushashing.TransactionID(accepted.Transaction)) {
			t.Fatalf("position %d: wrong transaction ID", i)
		}
	}
	if result.TotalFees() != 20 {
		t.Fatalf("expected total fees of 20 but got %d", result.TotalFees())
	}

	accepted := result.AcceptedTransactions()
	for i, tx := range accepted {
		if tx != result.Accepted[i].Transaction {
			t.Fatalf("AcceptedTransactions is not in the order of Accepted")
		}
	}
}

func TestFeeIsCapturedAtAcceptance(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})

	parent := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 8, To: keyB}})
	child := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: testutils.OutputOf(parent, 0), Key: keyB}},
		[]testutils.Pay{{Value: 3, To: keyA}})

	result := newTestBatchProcessor(utxoSet).ProcessWithReport([]*externalapi.DomainTransaction{parent, child})
	if len(result.Accepted) != 2 {
		t.Fatalf("expected both transactions to be accepted, got %v and rejected %v", result.Accepted, result.Rejected)
	}
	// The child's fee is 5 and the parent's is 2, even though neither's
	// inputs exist in the final UTXO set.
	if result.Accepted[0].Transaction != child || result.Accepted[0].Fee != 5 {
		t.Fatalf("expected the child first with fee 5, got %s", result.Accepted[0])
	}
	if result.Accepted[1].Transaction != parent || result.Accepted[1].Fee != 2 {
		t.Fatalf("expected the parent second with fee 2, got %s", result.Accepted[1])
	}
}

func TestChildBeforeParentIsRejected(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})

	parent := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 8, To: keyB}})
	child := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: testutils.OutputOf(parent, 0), Key: keyB}},
		[]testutils.Pay{{Value: 3, To: keyA}})

	accepted := newTestBatchProcessor(utxoSet).Process([]*externalapi.DomainTransaction{child, parent})
	if len(accepted) != 1 || accepted[0] != parent {
		t.Fatalf("expected only the parent to be accepted, got %v", accepted)
	}
}

// A transaction without inputs spends nothing, so a second copy of it in the
// same batch is accepted again and recreates its outputs even after they
// were spent in between.
func TestInputlessTransactionRepeatsInBatch(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})

	txE := testutils.NewTransaction(t, nil, []testutils.Pay{{Value: 0, To: keyA}})
	txEOutput := testutils.OutputOf(txE, 0)
	txS := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: txEOutput, Key: keyA}, {Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 10, To: keyB}})

	processor := newTestBatchProcessor(utxoSet)
	result := processor.ProcessWithReport([]*externalapi.DomainTransaction{txE, txS, txE})
	if len(result.Rejected) != 0 {
		t.Fatalf("expected no rejections, got %v", result.Rejected)
	}
	if len(result.Accepted) != 3 {
		t.Fatalf("expected 3 accepted transactions but got %d", len(result.Accepted))
	}
	for i, accepted := range result.Accepted {
		if accepted.BatchIndex != i {
			t.Fatalf("expected equal fees to keep batch order, got index %d at %d", accepted.BatchIndex, i)
		}
	}
	if !result.Accepted[0].ID.Equal(result.Accepted[2].ID) {
		t.Fatalf("both copies of TxE should share an ID")
	}

	current := processor.UTXOSet()
	if !current.Contains(&txEOutput) {
		t.Fatalf("the second TxE did not recreate its output")
	}
	if current.Contains(&u1) {
		t.Fatalf("U1 is still unspent")
	}
	txSOutput := testutils.OutputOf(txS, 0)
	if !current.Contains(&txSOutput) {
		t.Fatalf("TxS's output is missing")
	}
}

func TestConstructionCopiesUTXOSet(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	u2 := testutils.GenesisOutpoint(2, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})
	utxoSetBefore := utxoSet.String()

	processor := newTestBatchProcessor(utxoSet)

	// Changes to the caller's set are not seen by the processor.
	utxoSet.Add(&u2, utxoSet[u1])
	spendU2 := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u2, Key: keyA}},
		[]testutils.Pay{{Value: 1, To: keyB}})
	if processor.IsValid(spendU2) {
		t.Fatalf("the processor sees an entry added to the caller's set after construction")
	}
	utxoSet.Remove(&u2)

	tx := testutils.NewTransaction(t,
		[]testutils.Spend{{Outpoint: u1, Key: keyA}},
		[]testutils.Pay{{Value: 10, To: keyB}})
	accepted := processor.Process([]*externalapi.DomainTransaction{tx})
	if len(accepted) != 1 {
		t.Fatalf("expected the transaction to be accepted")
	}
	if utxoSet.String() != utxoSetBefore {
		t.Fatalf("processing changed the caller's UTXO set")
	}

	// Snapshots are independent too.
	snapshot := processor.UTXOSet()
	output := testutils.OutputOf(tx, 0)
	snapshot.Remove(&output)
	if !processor.UTXOSet().Contains(&output) {
		t.Fatalf("mutating a snapshot changed the processor's UTXO set")
	}
}

func TestNilCandidatesAreRejected(t *testing.T) {
	keyA := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})

	result := newTestBatchProcessor(utxoSet).ProcessWithReport([]*externalapi.DomainTransaction{
		nil,
		{Inputs: []*externalapi.DomainTransactionInput{nil}},
	})
	if len(result.Accepted) != 0 || len(result.Rejected) != 2 {
		t.Fatalf("expected both malformed candidates to be rejected, got %v / %v", result.Accepted, result.Rejected)
	}
	for _, rejected := range result.Rejected {
		if !errors.Is(rejected.Error, ruleerrors.ErrMalformedTransaction) {
			t.Fatalf("expected ErrMalformedTransaction but got %v", rejected.Error)
		}
	}

	if accepted := newTestBatchProcessor(nil).Process(nil); len(accepted) != 0 {
		t.Fatalf("expected an empty batch to accept nothing")
	}
}

// TestProcessedMatchesValidation checks, over a batch mixing valid, invalid
// and conflicting candidates, that every accepted transaction was valid at
// its turn and that the final UTXO set reflects exactly the accepted ones.
func TestProcessedMatchesValidation(t *testing.T) {
	keys := []*testutils.Key{testutils.NewKey(t), testutils.NewKey(t), testutils.NewKey(t)}
	var entries []testutils.Entry
	for i := 0; i < 6; i++ {
		entries = append(entries, testutils.Entry{
			Outpoint: testutils.GenesisOutpoint(byte(i), 0),
			Amount:   int64(10 + i),
			Owner:    keys[i%len(keys)],
		})
	}
	utxoSet := testutils.NewUTXOSet(entries...)

	var candidates []*externalapi.DomainTransaction
	for i, entry := range entries {
		signer := entry.Owner
		if i == 4 {
			signer = keys[(i+1)%len(keys)]
		}
		candidates = append(candidates, testutils.NewTransaction(t,
			[]testutils.Spend{{Outpoint: entry.Outpoint, Key: signer}},
			[]testutils.Pay{{Value: int64(i), To: keys[0]}}))
		// Every even entry is also claimed by a conflicting candidate.
		if i%2 == 0 {
			candidates = append(candidates, testutils.NewTransaction(t,
				[]testutils.Spend{{Outpoint: entry.Outpoint, Key: entry.Owner}},
				[]testutils.Pay{{Value: 1, To: keys[1]}}))
		}
	}

	validator := transactionvalidator.NewWithSchnorr()
	replay := utxoSet.Clone()
	var expected []*externalapi.DomainTransaction
	for _, candidate := range candidates {
		if validator.IsValid(candidate, replay) {
			expected = append(expected, candidate)
			for _, input := range candidate.Inputs {
				replay.Remove(&input.PreviousOutpoint)
			}
			txID := consensushashing.TransactionID(candidate)
			for i, output := range candidate.Outputs {
				replay.Add(externalapi.NewDomainOutpoint(txID, uint32(i)), utxo.NewUTXOEntryFromOutput(output))
			}
		}
	}

	processor := newTestBatchProcessor(utxoSet)
	result := processor.ProcessWithReport(candidates)
	if len(result.Accepted) != len(expected) {
		t.Fatalf("expected %d accepted transactions but got %d", len(expected), len(result.Accepted))
	}
	if len(result.Accepted)+len(result.Rejected) != len(candidates) {
		t.Fatalf("every candidate must be either accepted or rejected")
	}

	acceptedSet := make(map[*externalapi.DomainTransaction]bool)
	for i, accepted := range result.Accepted {
		acceptedSet[accepted.Transaction] = true
		if i > 0 && result.Accepted[i-1].Fee < accepted.Fee {
			t.Fatalf("accepted transactions are not sorted by descending fee")
		}
	}
	for _, tx := range expected {
		if !acceptedSet[tx] {
			t.Fatalf("a transaction valid at its turn was not accepted")
		}
	}

	final := processor.UTXOSet()
	for _, accepted := range result.Accepted {
		for _, input := range accepted.Transaction.Inputs {
			if final.Contains(&input.PreviousOutpoint) {
				t.Fatalf("outpoint %s spent by an accepted transaction is still unspent", input.PreviousOutpoint)
			}
		}
		for i := range accepted.Transaction.Outputs {
			if !final.Contains(externalapi.NewDomainOutpoint(accepted.ID, uint32(i))) {
				t.Fatalf("output %d of accepted %s is missing", i, accepted.ID)
			}
		}
	}
	assertSameUTXOSet(t, final, replay)
}

func TestConcurrentBatchesDoNotInterleave(t *testing.T) {
	keyA := testutils.NewKey(t)
	keyB := testutils.NewKey(t)
	u1 := testutils.GenesisOutpoint(1, 0)
	utxoSet := testutils.NewUTXOSet(testutils.Entry{Outpoint: u1, Amount: 10, Owner: keyA})
	processor := newTestBatchProcessor(utxoSet)

	const batches = 8
	candidates := make([]*externalapi.DomainTransaction, batches)
	for i := range candidates {
		candidates[i] = testutils.NewTransaction(t,
			[]testutils.Spend{{Outpoint: u1, Key: keyA}},
			[]testutils.Pay{{Value: int64(i), To: keyB}})
	}

	acceptedCounts := make([]int, batches)
	wg := sync.WaitGroup{}
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acceptedCounts[i] = len(processor.Process([]*externalapi.DomainTransaction{candidates[i]}))
		}(i)
	}
	wg.Wait()

	total := 0
	for _, count := range acceptedCounts {
		total += count
	}
	if total != 1 {
		t.Fatalf("expected exactly one batch to spend U1, but %d did", total)
	}
}
