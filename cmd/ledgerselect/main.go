package main

import (
	"fmt"
	"os"

	"github.com/kaspanet/ledgerselect/infrastructure/logger"
	"github.com/kaspanet/ledgerselect/util/panics"
	"github.com/kaspanet/ledgerselect/util/profiling"
	"github.com/pkg/errors"
)

func main() {
	defer panics.HandlePanic(log, nil)

	subCmd, config := parseCommandLine()

	var err error
	switch subCmd {
	case genesisSubCmd:
		conf := config.(*genesisConfig)
		err = withApp(&conf.AppFlags, func() error { return genesis(conf) })
	case processSubCmd:
		conf := config.(*processConfig)
		err = withApp(&conf.AppFlags, func() error { return process(conf) })
	case utxosSubCmd:
		conf := config.(*utxosConfig)
		err = withApp(&conf.AppFlags, func() error { return utxos(conf) })
	case keygenSubCmd:
		err = keygen(config.(*keygenConfig))
	case signSubCmd:
		err = sign(config.(*signConfig))
	default:
		err = errors.Errorf("Unknown sub-command '%s'\n", subCmd)
	}

	if err != nil {
		printErrorAndExit(err)
	}
}

// withApp resolves the shared flags and runs f with logging started. The log
// backend is flushed before returning.
func withApp(cfg *AppFlags, f func() error) error {
	err := cfg.resolve()
	if err != nil {
		return err
	}
	err = cfg.initLog()
	if err != nil {
		return err
	}
	defer logger.BackendLog.Close()

	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}
	if cfg.CPUProfile != "" {
		stop, err := profiling.StartCPUProfile(cfg.CPUProfile, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	return f()
}

func printErrorAndExit(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
