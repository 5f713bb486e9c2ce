package main

import (
	"encoding/hex"
	"fmt"

	"github.com/kaspanet/ledgerselect/domain/ledger/utils/txsig"
)

func keygen(_ *keygenConfig) error {
	keyPair, publicKey, err := txsig.GenerateKeyPair()
	if err != nil {
		return err
	}
	fmt.Printf("Private key: %s\n", hex.EncodeToString(txsig.SerializedPrivateKey(keyPair)))
	fmt.Printf("Public key: %s\n", hex.EncodeToString(publicKey))
	return nil
}
