package utxo

import (
	"sort"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/pkg/errors"
)

type utxoOutpointEntryPair struct {
	outpoint externalapi.DomainOutpoint
	entry    externalapi.UTXOEntry
}

type utxoCollectionIterator struct {
	index    int
	pairs    []utxoOutpointEntryPair
	isClosed bool
}

// Iterator returns an iterator over a snapshot of the collection, ordered by
// transaction ID and then by index.
func (uc Collection) Iterator() externalapi.ReadOnlyUTXOSetIterator {
	pairs := make([]utxoOutpointEntryPair, 0, len(uc))
	for outpoint, entry := range uc {
		pairs = append(pairs, utxoOutpointEntryPair{outpoint: outpoint, entry: entry})
	}
	sort.Slice(pairs, func(i, j int) bool {
		left, right := pairs[i].outpoint, pairs[j].outpoint
		if left.TransactionID != right.TransactionID {
			return (*externalapi.DomainHash)(&left.TransactionID).Less((*externalapi.DomainHash)(&right.TransactionID))
		}
		return left.Index < right.Index
	})
	return &utxoCollectionIterator{index: -1, pairs: pairs}
}

func (u *utxoCollectionIterator) First() bool {
	if u.isClosed {
		panic("Tried using a closed utxoCollectionIterator")
	}
	u.index = 0
	return len(u.pairs) > 0
}

func (u *utxoCollectionIterator) Next() bool {
	if u.isClosed {
		panic("Tried using a closed utxoCollectionIterator")
	}
	u.index++
	return u.index < len(u.pairs)
}

func (u *utxoCollectionIterator) Get() (outpoint *externalapi.DomainOutpoint, utxoEntry externalapi.UTXOEntry, err error) {
	if u.isClosed {
		return nil, nil, errors.New("Tried using a closed utxoCollectionIterator")
	}
	if u.index < 0 || u.index >= len(u.pairs) {
		return nil, nil, errors.Errorf("iterator index %d is out of range", u.index)
	}
	pair := u.pairs[u.index]
	outpointClone := pair.outpoint
	return &outpointClone, pair.entry, nil
}

func (u *utxoCollectionIterator) Close() error {
	if u.isClosed {
		return errors.New("Tried using a closed utxoCollectionIterator")
	}
	u.isClosed = true
	u.pairs = nil
	return nil
}
