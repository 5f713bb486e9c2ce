package utxo

import (
	"bytes"
	"io"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/serialization"
)

// SerializeUTXO returns the byte-slice representation for given UTXOEntry-outpoint pair
func SerializeUTXO(entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serialization.SerializeOutpoint(w, outpoint)
	if err != nil {
		return nil, err
	}

	err = serializeUTXOEntry(w, entry)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeUTXO deserializes the given byte slice to UTXOEntry-outpoint pair
func DeserializeUTXO(utxoBytes []byte) (entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint, err error) {
	r := bytes.NewReader(utxoBytes)
	outpoint, err = serialization.DeserializeOutpoint(r)
	if err != nil {
		return nil, nil, err
	}

	entry, err = deserializeUTXOEntry(r)
	if err != nil {
		return nil, nil, err
	}

	return entry, outpoint, nil
}

// SerializeOutpoint returns the byte-slice representation of outpoint.
func SerializeOutpoint(outpoint *externalapi.DomainOutpoint) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serialization.SerializeOutpoint(w, outpoint)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// SerializeUTXOEntry returns the byte-slice representation of entry.
func SerializeUTXOEntry(entry externalapi.UTXOEntry) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serializeUTXOEntry(w, entry)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DeserializeUTXOEntry deserializes an entry written by SerializeUTXOEntry.
func DeserializeUTXOEntry(entryBytes []byte) (externalapi.UTXOEntry, error) {
	return deserializeUTXOEntry(bytes.NewReader(entryBytes))
}

func serializeUTXOEntry(w io.Writer, entry externalapi.UTXOEntry) error {
	return serialization.WriteElements(w, entry.Amount(), entry.PublicKey())
}

func deserializeUTXOEntry(r io.Reader) (externalapi.UTXOEntry, error) {
	var amount int64
	var publicKey []byte
	err := serialization.ReadElements(r, &amount, &publicKey)
	if err != nil {
		return nil, err
	}
	return NewUTXOEntry(amount, publicKey), nil
}

// DeserializeOutpoint deserializes an outpoint written by SerializeOutpoint.
func DeserializeOutpoint(outpointBytes []byte) (*externalapi.DomainOutpoint, error) {
	return serialization.DeserializeOutpoint(bytes.NewReader(outpointBytes))
}
