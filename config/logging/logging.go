// Package logging configures the process-wide logrus output format, the
// ambient piece every entry point (a CLI tool, a long-running service)
// needs regardless of which part of the state-transition engine it drives.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// ConfigureFormatter installs logrus's global formatter. "text" gives a
// human-readable, optionally colorized prefixed format; "json" gives
// machine-parseable structured output for log aggregation.
func ConfigureFormatter(format string, toFile bool) error {
	switch format {
	case "text":
		f := new(prefixed.TextFormatter)
		f.TimestampFormat = "2006-01-02 15:04:05"
		f.FullTimestamp = true
		f.DisableColors = toFile
		logrus.SetFormatter(f)
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
