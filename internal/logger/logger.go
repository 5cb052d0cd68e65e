package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

type Options struct {
	Verbose bool   // debug level, overrides Level
	NoColor bool   // plain ascii output
	Level   string // debug, info, warn, error or fatal; empty means warn
	Output  io.Writer
}

// Init initializes the process-wide logger
func Init(opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	l := log.NewWithOptions(out,
		log.Options{
			ReportCaller:    opts.Verbose,
			ReportTimestamp: false, // runs are short, timestamps only add noise
			TimeFormat:      time.RFC3339,
			Prefix:          "IRVM",
		})

	level := log.WarnLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		level = parsed
	}
	if opts.Verbose {
		level = log.DebugLevel
	}
	l.SetLevel(level)

	l.SetColorProfile(termenv.ANSI256)
	if opts.NoColor {
		l.SetColorProfile(termenv.Ascii)
	}

	log.SetDefault(l)
	return nil
}
