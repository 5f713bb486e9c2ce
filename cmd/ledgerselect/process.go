package main

import (
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/kaspanet/ledgerselect/domain/ledger"
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
)

func process(conf *processConfig) error {
	var batch jsonBatch
	err := readJSONFile(conf.File, &batch)
	if err != nil {
		return err
	}
	candidates, err := batchFromJSON(&batch)
	if err != nil {
		return err
	}
	log.Tracef("Candidates: %s", logger.NewLogClosure(func() string {
		return spew.Sdump(candidates)
	}))

	store, closeStore, err := openStore(&conf.AppFlags)
	if err != nil {
		return err
	}
	defer closeStore()

	utxoSet, err := store.LoadUTXOSet()
	if err != nil {
		return err
	}

	l := ledger.New(utxoSet)
	onEnd := logger.LogAndMeasureItemsExecutionTime(log, "process", len(candidates))
	result := l.ProcessWithReport(candidates)
	onEnd()

	saved := false
	if conf.DryRun {
		log.Infof("Dry run: the UTXO set was not saved")
	} else {
		_, err = store.SaveUTXOSet(l.UTXOSet())
		if err != nil {
			return err
		}
		saved = true
	}

	commitment, err := l.UTXOCommitment()
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, batchReportToJSON(result, commitment, saved))
}
