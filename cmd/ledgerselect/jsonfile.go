package main

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"io/ioutil"

	"github.com/kaspanet/ledgerselect/domain/ledger/model"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/consensushashing"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/utxo"
	"github.com/pkg/errors"
)

type jsonOutpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

type jsonInput struct {
	PreviousOutpoint jsonOutpoint `json:"previousOutpoint"`
	Signature        string       `json:"signature,omitempty"`
}

type jsonOutput struct {
	Value     int64  `json:"value"`
	PublicKey string `json:"publicKey"`
}

type jsonTransaction struct {
	ID      string        `json:"id,omitempty"`
	Version uint16        `json:"version"`
	Inputs  []*jsonInput  `json:"inputs"`
	Outputs []*jsonOutput `json:"outputs"`
}

type jsonBatch struct {
	Transactions []*jsonTransaction `json:"transactions"`
}

type jsonUTXOEntry struct {
	Outpoint  jsonOutpoint `json:"outpoint"`
	Amount    int64        `json:"amount"`
	PublicKey string       `json:"publicKey"`
}

type jsonUTXOSet struct {
	Entries []*jsonUTXOEntry `json:"entries"`
}

type jsonAccepted struct {
	ID         string `json:"id"`
	Fee        int64  `json:"fee"`
	BatchIndex int    `json:"batchIndex"`
}

type jsonRejected struct {
	BatchIndex int    `json:"batchIndex"`
	Reason     string `json:"reason"`
}

type jsonBatchReport struct {
	Accepted   []*jsonAccepted `json:"accepted"`
	Rejected   []*jsonRejected `json:"rejected"`
	TotalFees  int64           `json:"totalFees"`
	Commitment string          `json:"utxoCommitment"`
	Saved      bool            `json:"saved"`
}

func readJSONFile(path string, target interface{}) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read %s", path)
	}
	err = json.Unmarshal(data, target)
	if err != nil {
		return errors.Wrapf(err, "could not parse %s", path)
	}
	return nil
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.WithStack(encoder.Encode(value))
}

func outpointFromJSON(jsonOutpoint *jsonOutpoint) (*externalapi.DomainOutpoint, error) {
	transactionID, err := externalapi.NewDomainTransactionIDFromString(jsonOutpoint.TransactionID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction ID %q", jsonOutpoint.TransactionID)
	}
	return externalapi.NewDomainOutpoint(transactionID, jsonOutpoint.Index), nil
}

func outpointToJSON(outpoint *externalapi.DomainOutpoint) jsonOutpoint {
	return jsonOutpoint{
		TransactionID: outpoint.TransactionID.String(),
		Index:         outpoint.Index,
	}
}

func transactionFromJSON(jsonTx *jsonTransaction) (*externalapi.DomainTransaction, error) {
	tx := &externalapi.DomainTransaction{
		Version: jsonTx.Version,
		Inputs:  make([]*externalapi.DomainTransactionInput, len(jsonTx.Inputs)),
		Outputs: make([]*externalapi.DomainTransactionOutput, len(jsonTx.Outputs)),
	}
	for i, jsonInput := range jsonTx.Inputs {
		if jsonInput == nil {
			return nil, errors.Errorf("input %d is null", i)
		}
		outpoint, err := outpointFromJSON(&jsonInput.PreviousOutpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		signature, err := hex.DecodeString(jsonInput.Signature)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d has an invalid signature", i)
		}
		tx.Inputs[i] = &externalapi.DomainTransactionInput{
			PreviousOutpoint: *outpoint,
			Signature:        signature,
		}
	}
	for i, jsonOutput := range jsonTx.Outputs {
		if jsonOutput == nil {
			return nil, errors.Errorf("output %d is null", i)
		}
		publicKey, err := hex.DecodeString(jsonOutput.PublicKey)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d has an invalid public key", i)
		}
		tx.Outputs[i] = &externalapi.DomainTransactionOutput{
			Value:     jsonOutput.Value,
			PublicKey: publicKey,
		}
	}

	if jsonTx.ID != "" {
		id := consensushashing.TransactionID(tx)
		if id.String() != jsonTx.ID {
			return nil, errors.Errorf("transaction ID %s does not match its contents (%s)", jsonTx.ID, id)
		}
	}
	return tx, nil
}

func transactionToJSON(tx *externalapi.DomainTransaction) *jsonTransaction {
	jsonTx := &jsonTransaction{
		ID:      consensushashing.TransactionID(tx).String(),
		Version: tx.Version,
		Inputs:  make([]*jsonInput, len(tx.Inputs)),
		Outputs: make([]*jsonOutput, len(tx.Outputs)),
	}
	for i, input := range tx.Inputs {
		jsonTx.Inputs[i] = &jsonInput{
			PreviousOutpoint: outpointToJSON(&input.PreviousOutpoint),
			Signature:        hex.EncodeToString(input.Signature),
		}
	}
	for i, output := range tx.Outputs {
		jsonTx.Outputs[i] = &jsonOutput{
			Value:     output.Value,
			PublicKey: hex.EncodeToString(output.PublicKey),
		}
	}
	return jsonTx
}

// batchFromJSON decodes a batch. A null transaction stays nil so that the
// ledger rejects it at its position in the batch.
func batchFromJSON(batch *jsonBatch) ([]*externalapi.DomainTransaction, error) {
	transactions := make([]*externalapi.DomainTransaction, len(batch.Transactions))
	for i, jsonTx := range batch.Transactions {
		if jsonTx == nil {
			continue
		}
		tx, err := transactionFromJSON(jsonTx)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		transactions[i] = tx
	}
	return transactions, nil
}

func batchToJSON(transactions []*externalapi.DomainTransaction) *jsonBatch {
	batch := &jsonBatch{Transactions: make([]*jsonTransaction, len(transactions))}
	for i, tx := range transactions {
		batch.Transactions[i] = transactionToJSON(tx)
	}
	return batch
}

func utxoSetFromJSON(jsonSet *jsonUTXOSet) (utxo.Collection, error) {
	utxoSet := utxo.NewCollection()
	for i, jsonEntry := range jsonSet.Entries {
		if jsonEntry == nil {
			return nil, errors.Errorf("entry %d is null", i)
		}
		outpoint, err := outpointFromJSON(&jsonEntry.Outpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		if utxoSet.Contains(outpoint) {
			return nil, errors.Errorf("entry %d: outpoint %s appears more than once", i, outpoint)
		}
		if jsonEntry.Amount < 0 {
			return nil, errors.Errorf("entry %d: negative amount %d", i, jsonEntry.Amount)
		}
		publicKey, err := hex.DecodeString(jsonEntry.PublicKey)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d has an invalid public key", i)
		}
		utxoSet.Add(outpoint, utxo.NewUTXOEntry(jsonEntry.Amount, publicKey))
	}
	return utxoSet, nil
}

func utxoSetToJSON(utxoSet externalapi.ReadOnlyUTXOSet) (*jsonUTXOSet, error) {
	jsonSet := &jsonUTXOSet{Entries: make([]*jsonUTXOEntry, 0, utxoSet.Len())}
	iterator := utxoSet.Iterator()
	defer iterator.Close()
	for ok := iterator.First(); ok; ok = iterator.Next() {
		outpoint, entry, err := iterator.Get()
		if err != nil {
			return nil, err
		}
		jsonSet.Entries = append(jsonSet.Entries, &jsonUTXOEntry{
			Outpoint:  outpointToJSON(outpoint),
			Amount:    entry.Amount(),
			PublicKey: hex.EncodeToString(entry.PublicKey()),
		})
	}
	return jsonSet, nil
}

func batchReportToJSON(result *model.BatchResult, commitment *externalapi.DomainHash, saved bool) *jsonBatchReport {
	report := &jsonBatchReport{
		Accepted:   make([]*jsonAccepted, len(result.Accepted)),
		Rejected:   make([]*jsonRejected, len(result.Rejected)),
		TotalFees:  result.TotalFees(),
		Commitment: commitment.String(),
		Saved:      saved,
	}
	for i, accepted := range result.Accepted {
		report.Accepted[i] = &jsonAccepted{
			ID:         accepted.ID.String(),
			Fee:        accepted.Fee,
			BatchIndex: accepted.BatchIndex,
		}
	}
	for i, rejected := range result.Rejected {
		report.Rejected[i] = &jsonRejected{
			BatchIndex: rejected.BatchIndex,
			Reason:     rejected.Error.Error(),
		}
	}
	return report
}
