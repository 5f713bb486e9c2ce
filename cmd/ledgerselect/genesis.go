package main

import (
	"fmt"

	"github.com/pkg/errors"
)

func genesis(conf *genesisConfig) error {
	var jsonSet jsonUTXOSet
	err := readJSONFile(conf.File, &jsonSet)
	if err != nil {
		return err
	}
	utxoSet, err := utxoSetFromJSON(&jsonSet)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(&conf.AppFlags)
	if err != nil {
		return err
	}
	defer closeStore()

	hasUTXOSet, err := store.HasUTXOSet()
	if err != nil {
		return err
	}
	if hasUTXOSet && !conf.Force {
		return errors.Errorf("a UTXO set already exists in %s. Use --force to overwrite it", conf.dataDir())
	}

	commitment, err := store.SaveUTXOSet(utxoSet)
	if err != nil {
		return err
	}
	log.Infof("Initialized the UTXO set with %d entries", utxoSet.Len())
	fmt.Printf("UTXO commitment: %s\n", commitment)
	return nil
}
