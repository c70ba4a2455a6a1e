package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/xlog"
)

// SetupLogging points package loggers at w and applies the level name.
func SetupLogging(w io.Writer, level string) error {
	xlog.SetFormatter(xlog.NewStringFormatter(w))
	return setLogLevel(level)
}

func setLogLevel(level string) error {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	case "INFO":
		xlog.SetGlobalLogLevel(xlog.INFO)
	case "NOTICE":
		xlog.SetGlobalLogLevel(xlog.NOTICE)
	case "", "WARN", "WARNING":
		xlog.SetGlobalLogLevel(xlog.WARNING)
	case "ERROR":
		xlog.SetGlobalLogLevel(xlog.ERROR)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
