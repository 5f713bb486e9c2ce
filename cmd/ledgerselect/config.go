package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/ledgerselect/infrastructure/logger"
	"github.com/kaspanet/ledgerselect/util"
	"github.com/pkg/errors"
)

const (
	genesisSubCmd = "genesis"
	processSubCmd = "process"
	utxosSubCmd   = "utxos"
	keygenSubCmd  = "keygen"
	signSubCmd    = "sign"

	defaultLogFilename    = "ledgerselect.log"
	defaultErrLogFilename = "ledgerselect_err.log"
	defaultDataDirname    = "data"
	defaultLogDirname     = "logs"
)

var defaultAppDir = util.AppDataDir("ledgerselect", false)

// AppFlags are shared by every sub-command that touches the UTXO set.
type AppFlags struct {
	AppDir       string `long:"appdir" short:"b" description:"Directory to store the UTXO set and logs"`
	LogDir       string `long:"logdir" description:"Directory to log output"`
	LogLevel     string `long:"loglevel" short:"d" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical}" default:"info"`
	NoLogFiles   bool   `long:"nologfiles" description:"Disable logging to files"`
	CacheSizeMiB int    `long:"cachesize" description:"LevelDB block cache size in MiB" default:"64"`
	Profile      string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	CPUProfile   string `long:"cpuprofile" description:"Write CPU profile to the specified file"`
}

type genesisConfig struct {
	File  string `long:"file" short:"f" description:"JSON file with the initial UTXO set" required:"true"`
	Force bool   `long:"force" description:"Overwrite an existing UTXO set"`
	AppFlags
}

type processConfig struct {
	File   string `long:"file" short:"f" description:"JSON file with the batch of candidate transactions" required:"true"`
	DryRun bool   `long:"dry-run" description:"Report the outcome without saving the new UTXO set"`
	AppFlags
}

type utxosConfig struct {
	AppFlags
}

type keygenConfig struct{}

type signConfig struct {
	PrivateKey string `long:"private-key" short:"k" description:"The private key of the signer (encoded in hex)" required:"true"`
	File       string `long:"file" short:"f" description:"JSON file with the batch of transactions to sign" required:"true"`
}

func parseCommandLine() (subCommand string, config interface{}) {
	parser := flags.NewParser(nil, flags.PrintErrors|flags.HelpFlag)

	genesisConf := &genesisConfig{}
	parser.AddCommand(genesisSubCmd, "Initializes the UTXO set",
		"Initializes the stored UTXO set from a JSON file", genesisConf)

	processConf := &processConfig{}
	parser.AddCommand(processSubCmd, "Processes a batch of transactions",
		"Validates a batch of candidate transactions against the stored UTXO set, applies the accepted ones "+
			"and prints them ordered by descending fee", processConf)

	utxosConf := &utxosConfig{}
	parser.AddCommand(utxosSubCmd, "Prints the UTXO set",
		"Prints the stored UTXO set as JSON", utxosConf)

	keygenConf := &keygenConfig{}
	parser.AddCommand(keygenSubCmd, "Generates a key pair",
		"Generates a new Schnorr key pair and prints it in hex", keygenConf)

	signConf := &signConfig{}
	parser.AddCommand(signSubCmd, "Signs a batch of transactions",
		"Signs every unsigned input in a JSON batch with the given private key and prints the result", signConf)

	_, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
		return "", nil
	}

	switch parser.Command.Active.Name {
	case genesisSubCmd:
		config = genesisConf
	case processSubCmd:
		config = processConf
	case utxosSubCmd:
		config = utxosConf
	case keygenSubCmd:
		config = keygenConf
	case signSubCmd:
		config = signConf
	}

	return parser.Command.Active.Name, config
}

// resolve fills in directory defaults and validates the log level.
func (cfg *AppFlags) resolve() error {
	if cfg.AppDir == "" {
		cfg.AppDir = defaultAppDir
	}
	cfg.AppDir = cleanAndExpandPath(cfg.AppDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.AppDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if _, ok := logger.LevelFromString(cfg.LogLevel); !ok {
		return errors.Errorf("the specified debug level [%s] is invalid", cfg.LogLevel)
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.New("the profile port must be between 1024 and 65535")
		}
	}
	if cfg.CPUProfile != "" {
		cfg.CPUProfile = cleanAndExpandPath(cfg.CPUProfile)
	}
	return nil
}

// dataDir returns the directory of the LevelDB UTXO store.
func (cfg *AppFlags) dataDir() string {
	return filepath.Join(cfg.AppDir, defaultDataDirname)
}

// initLog starts the logging backend and applies the configured log level to
// every subsystem.
func (cfg *AppFlags) initLog() error {
	logFile, errLogFile := "", ""
	if !cfg.NoLogFiles {
		logFile = filepath.Join(cfg.LogDir, defaultLogFilename)
		errLogFile = filepath.Join(cfg.LogDir, defaultErrLogFilename)
	}
	err := logger.InitLog(logFile, errLogFile)
	if err != nil {
		return err
	}
	return logger.SetLogLevels(cfg.LogLevel)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
