package main

import (
	"os"
)

func utxos(conf *utxosConfig) error {
	store, closeStore, err := openStore(&conf.AppFlags)
	if err != nil {
		return err
	}
	defer closeStore()

	utxoSet, err := store.LoadUTXOSet()
	if err != nil {
		return err
	}
	jsonSet, err := utxoSetToJSON(utxoSet)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, jsonSet)
}
