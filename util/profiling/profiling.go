package profiling

import (
	"net"
	"net/http"
	"os"
	"runtime/pprof"

	// Required for profiling
	_ "net/http/pprof"

	"github.com/kaspanet/ledgerselect/infrastructure/logger"
	"github.com/kaspanet/ledgerselect/util/panics"
	"github.com/pkg/errors"
)

// Start starts the profiling server
func Start(port string, log *logger.Logger) {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		profileRedirect := http.RedirectHandler("/debug/pprof", http.StatusSeeOther)
		http.Handle("/", profileRedirect)
		log.Error(http.ListenAndServe(listenAddr, nil))
	})
}

// StartCPUProfile writes a CPU profile into path until the returned function
// is called.
func StartCPUProfile(path string, log *logger.Logger) (stop func(), err error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create CPU profile %s", path)
	}
	err = pprof.StartCPUProfile(file)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "unable to start CPU profiling")
	}
	log.Infof("Writing CPU profile to %s", path)
	return func() {
		pprof.StopCPUProfile()
		err := file.Close()
		if err != nil {
			log.Errorf("Error closing CPU profile %s: %s", path, err)
		}
	}, nil
}
