package utxo

import (
	"github.com/kaspanet/go-muhash"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
)

// Commitment returns an order-independent commitment to every entry in
// utxoSet. Two sets have the same commitment iff they hold the same entries.
func Commitment(utxoSet externalapi.ReadOnlyUTXOSet) (*externalapi.DomainHash, error) {
	multiset := muhash.NewMuHash()
	iterator := utxoSet.Iterator()
	defer iterator.Close()
	for ok := iterator.First(); ok; ok = iterator.Next() {
		outpoint, entry, err := iterator.Get()
		if err != nil {
			return nil, err
		}
		serialized, err := SerializeUTXO(entry, outpoint)
		if err != nil {
			return nil, err
		}
		multiset.Add(serialized)
	}
	finalized := multiset.Finalize()
	return externalapi.NewDomainHashFromByteSlice(finalized[:])
}
