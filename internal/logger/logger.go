package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup builds the process logger.
//   - level: trace, debug, info, warn, error, fatal or panic. Unknown values fall back to info.
//   - format: "pretty" for console output, "auto" for console output only when stdout
//     is a terminal, anything else for JSON lines.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	return New(os.Stdout, format)
}

// New builds a logger writing to out.
func New(out io.Writer, format string) zerolog.Logger {
	var writer io.Writer = out
	if pretty(out, format) {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}

func pretty(out io.Writer, format string) bool {
	switch format {
	case "pretty":
		return true
	case "auto":
		f, ok := out.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
	return false
}
