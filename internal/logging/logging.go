package logging

import (
	"io"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
)

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup points the standard logger at stdout and, when File is set, at a
// rotating log file as well. The returned writer is meant for gin's writers;
// the closer flushes the rotating file.
func Setup(opts Options) (io.Writer, io.Closer) {
	var w io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, lj)
		closer = lj
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return w, closer
}

// New returns a prefixed logger writing to the shared sink.
func New(prefix string) *log.Logger {
	return log.New(log.Writer(), prefix, log.Flags())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
