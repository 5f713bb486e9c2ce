package serialization

import (
	"io"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/pkg/errors"
)

// TxEncoding is a bitmask defining which transaction fields are serialized.
type TxEncoding uint8

const (
	// TxEncodingFull is the default encoding: every field is serialized.
	TxEncodingFull TxEncoding = 0

	// TxEncodingExcludeSignatures excludes every input's signature. It is used
	// for transaction IDs and signable payloads, which must not depend on signatures.
	TxEncodingExcludeSignatures TxEncoding = 1 << iota
)

// maxTransactionItems bounds the number of inputs or outputs read from a stream.
const maxTransactionItems = 1 << 16

// SerializeTransaction writes tx to w using the given encoding.
func SerializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, encoding TxEncoding) error {
	err := WriteElements(w, tx.Version, uint64(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		err = SerializeOutpoint(w, &input.PreviousOutpoint)
		if err != nil {
			return err
		}
		if encoding&TxEncodingExcludeSignatures != TxEncodingExcludeSignatures {
			err = WriteElement(w, input.Signature)
			if err != nil {
				return err
			}
		}
	}

	err = WriteElement(w, uint64(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		err = SerializeOutput(w, output)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeTransaction reads a fully encoded transaction from r.
func DeserializeTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	tx := &externalapi.DomainTransaction{}
	var inputCount uint64
	err := ReadElements(r, &tx.Version, &inputCount)
	if err != nil {
		return nil, err
	}
	if inputCount > maxTransactionItems {
		return nil, errors.Wrapf(errMalformed, "too many inputs: %d", inputCount)
	}

	tx.Inputs = make([]*externalapi.DomainTransactionInput, inputCount)
	for i := range tx.Inputs {
		input := &externalapi.DomainTransactionInput{}
		outpoint, err := DeserializeOutpoint(r)
		if err != nil {
			return nil, err
		}
		input.PreviousOutpoint = *outpoint
		err = ReadElement(r, &input.Signature)
		if err != nil {
			return nil, err
		}
		tx.Inputs[i] = input
	}

	var outputCount uint64
	err = ReadElement(r, &outputCount)
	if err != nil {
		return nil, err
	}
	if outputCount > maxTransactionItems {
		return nil, errors.Wrapf(errMalformed, "too many outputs: %d", outputCount)
	}
	tx.Outputs = make([]*externalapi.DomainTransactionOutput, outputCount)
	for i := range tx.Outputs {
		tx.Outputs[i], err = DeserializeOutput(r)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// SerializeOutpoint writes the transaction ID and index of outpoint to w.
func SerializeOutpoint(w io.Writer, outpoint *externalapi.DomainOutpoint) error {
	return WriteElements(w, outpoint.TransactionID, outpoint.Index)
}

// DeserializeOutpoint reads an outpoint written by SerializeOutpoint.
func DeserializeOutpoint(r io.Reader) (*externalapi.DomainOutpoint, error) {
	outpoint := &externalapi.DomainOutpoint{}
	err := ReadElements(r, &outpoint.TransactionID, &outpoint.Index)
	if err != nil {
		return nil, err
	}
	return outpoint, nil
}

// SerializeOutput writes the value and public key of output to w.
func SerializeOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	return WriteElements(w, output.Value, output.PublicKey)
}

// DeserializeOutput reads an output written by SerializeOutput.
func DeserializeOutput(r io.Reader) (*externalapi.DomainTransactionOutput, error) {
	output := &externalapi.DomainTransactionOutput{}
	err := ReadElements(r, &output.Value, &output.PublicKey)
	if err != nil {
		return nil, err
	}
	return output, nil
}
