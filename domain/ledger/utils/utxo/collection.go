package utxo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
)

// Collection is an in-memory UTXO set: a mapping from outpoint to the entry
// it identifies. Entries are immutable, so a shallow copy of the map is an
// independent copy of the set.
type Collection map[externalapi.DomainOutpoint]externalapi.UTXOEntry

// NewCollection returns an empty Collection.
func NewCollection() Collection {
	return Collection{}
}

// Get returns the entry of outpoint, if it exists.
func (uc Collection) Get(outpoint *externalapi.DomainOutpoint) (externalapi.UTXOEntry, bool) {
	if outpoint == nil {
		return nil, false
	}
	entry, ok := uc[*outpoint]
	return entry, ok
}

// Contains returns whether outpoint is in the collection.
func (uc Collection) Contains(outpoint *externalapi.DomainOutpoint) bool {
	_, ok := uc.Get(outpoint)
	return ok
}

// Add inserts entry under outpoint, replacing any previous entry.
func (uc Collection) Add(outpoint *externalapi.DomainOutpoint, entry externalapi.UTXOEntry) {
	uc[*outpoint] = entry
}

// Remove deletes outpoint from the collection. Removing a missing outpoint is a no-op.
func (uc Collection) Remove(outpoint *externalapi.DomainOutpoint) {
	delete(uc, *outpoint)
}

// Len returns the number of entries in the collection.
func (uc Collection) Len() int {
	return len(uc)
}

// Clone returns an independent copy of the collection.
func (uc Collection) Clone() externalapi.UTXOSet {
	return uc.clone()
}

func (uc Collection) clone() Collection {
	clone := make(Collection, len(uc))
	for outpoint, entry := range uc {
		clone[outpoint] = entry
	}
	return clone
}

// AddTransaction removes every outpoint tx spends and adds every output tx
// creates under txID. It does not validate tx.
func (uc Collection) AddTransaction(tx *externalapi.DomainTransaction, txID *externalapi.DomainTransactionID) {
	for _, input := range tx.Inputs {
		uc.Remove(&input.PreviousOutpoint)
	}
	for i, output := range tx.Outputs {
		uc.Add(externalapi.NewDomainOutpoint(txID, uint32(i)), NewUTXOEntryFromOutput(output))
	}
}

func (uc Collection) String() string {
	utxoStrings := make([]string, 0, len(uc))
	for outpoint, entry := range uc {
		utxoStrings = append(utxoStrings, fmt.Sprintf("%s => %d", outpoint, entry.Amount()))
	}

	// Sort strings for determinism.
	sort.Strings(utxoStrings)

	return fmt.Sprintf("[ %s ]", strings.Join(utxoStrings, ", "))
}
