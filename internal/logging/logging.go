// Package logging builds the process-wide zerolog event logger. Every
// component logs structured events (an event-type message plus typed fields)
// through a logger derived from this one; the optional file sink doubles as
// the append-only event log.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates the root logger at the given threshold level. When file is
// non-empty the log stream is additionally appended to that path; the
// returned closer owns the file handle and is nil when no file sink is used.
func New(level, file string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	var closer io.Closer

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w = zerolog.MultiLevelWriter(os.Stdout, f)
		closer = f
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	return logger, closer, nil
}
