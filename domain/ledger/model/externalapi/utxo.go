package externalapi

// ReadOnlyUTXOSet is a read-only view of a set of unspent outputs.
type ReadOnlyUTXOSet interface {
	Get(outpoint *DomainOutpoint) (UTXOEntry, bool)
	Contains(outpoint *DomainOutpoint) bool
	Len() int
	Iterator() ReadOnlyUTXOSetIterator
	Clone() UTXOSet
}

// UTXOSet is a mutable set of unspent outputs.
type UTXOSet interface {
	ReadOnlyUTXOSet
	Add(outpoint *DomainOutpoint, entry UTXOEntry)
	Remove(outpoint *DomainOutpoint)

	// AddTransaction removes every outpoint tx spends and adds every output
	// tx creates under txID. It does not validate tx.
	AddTransaction(tx *DomainTransaction, txID *DomainTransactionID)
}

// ReadOnlyUTXOSetIterator is an iterator over all entries in a
// ReadOnlyUTXOSet
type ReadOnlyUTXOSetIterator interface {
	First() bool
	Next() bool
	Get() (outpoint *DomainOutpoint, utxoEntry UTXOEntry, err error)
	Close() error
}
