package transactionvalidator

import (
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
)

var log = logger.RegisterSubSystem("TXVL")
