package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/effective-security/xlog"
)

// memprofile is set by the hidden --memprofile flag.
var memprofile bool

// writeMemProfiles dumps the heap and allocs profiles into the working
// directory when --memprofile was given.
func writeMemProfiles() {
	if !memprofile {
		return
	}
	for _, name := range []string{"heap", "allocs"} {
		path := progName + "_" + name + ".profile"
		if err := writeProfile(name, path); err != nil {
			logger.KV(xlog.ERROR, "profile", name, "err", err.Error())
			return
		}
		logger.KV(xlog.INFO, "profile", name, "path", path)
	}
}

func writeProfile(name, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s profile: %w", name, cerr)
		}
	}()
	if err := pprof.Lookup(name).WriteTo(f, 0); err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}
	return nil
}
