package ledger

import (
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
)

var log = logger.RegisterSubSystem("LDGR")
