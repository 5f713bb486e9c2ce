package consensushashing

import (
	"bytes"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/hashes"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/serialization"
	"github.com/pkg/errors"
)

// TransactionID generates the ID of the given transaction. The ID excludes
// input signatures, so re-signing a transaction does not change its ID.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	writer := hashes.NewTransactionIDWriter()
	err := serialization.SerializeTransaction(writer, tx, serialization.TxEncodingExcludeSignatures)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "TransactionID() failed. this should never fail for structurally-valid transactions"))
	}
	return (*externalapi.DomainTransactionID)(writer.Finalize())
}

// SignablePayload returns the bytes the signature of the input at
// inputIndex must authenticate: the transaction without any signature,
// followed by the input index.
func SignablePayload(tx *externalapi.DomainTransaction, inputIndex int) ([]byte, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, errors.Errorf("input index %d is out of range for a transaction with %d inputs",
			inputIndex, len(tx.Inputs))
	}

	buf := &bytes.Buffer{}
	err := serialization.SerializeTransaction(buf, tx, serialization.TxEncodingExcludeSignatures)
	if err != nil {
		return nil, err
	}
	err = serialization.WriteElement(buf, uint32(inputIndex))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
