package main

import (
	"encoding/hex"
	"os"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/kaspanet/ledgerselect/domain/ledger/utils/txsig"
	"github.com/pkg/errors"
)

func sign(conf *signConfig) error {
	privateKey, err := hex.DecodeString(conf.PrivateKey)
	if err != nil {
		return errors.Wrap(err, "the private key is not valid hex")
	}
	keyPair, err := txsig.KeyPairFromPrivateKey(privateKey)
	if err != nil {
		return err
	}

	var batch jsonBatch
	err = readJSONFile(conf.File, &batch)
	if err != nil {
		return err
	}
	transactions, err := batchFromJSON(&batch)
	if err != nil {
		return err
	}

	for i, tx := range transactions {
		if tx == nil {
			return errors.Errorf("transaction %d is null", i)
		}
		err := signUnsignedInputs(tx, keyPair)
		if err != nil {
			return errors.Wrapf(err, "transaction %d", i)
		}
	}
	return writeJSON(os.Stdout, batchToJSON(transactions))
}

// signUnsignedInputs signs every input of tx that has no signature yet.
// Signatures never cover each other, so the order does not matter.
func signUnsignedInputs(tx *externalapi.DomainTransaction, keyPair *secp256k1.SchnorrKeyPair) error {
	for i, input := range tx.Inputs {
		if len(input.Signature) != 0 {
			continue
		}
		err := txsig.SignInput(tx, i, keyPair)
		if err != nil {
			return err
		}
	}
	return nil
}
