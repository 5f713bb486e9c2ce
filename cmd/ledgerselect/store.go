package main

import (
	"github.com/kaspanet/ledgerselect/infrastructure/db/database/ldb"
	"github.com/kaspanet/ledgerselect/infrastructure/db/utxostore"
)

// openStore opens the UTXO store under the app directory. The returned
// function closes it.
func openStore(cfg *AppFlags) (*utxostore.Store, func(), error) {
	db, err := ldb.NewLevelDB(cfg.dataDir(), cfg.CacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the UTXO store: %s", err)
		}
	}
	return utxostore.New(db), closeStore, nil
}
