package utxostore

import "github.com/kaspanet/ledgerselect/infrastructure/logger"

var log = logger.RegisterSubSystem("UTXO")
