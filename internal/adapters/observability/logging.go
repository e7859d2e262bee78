package observability

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process-wide zerolog Logger, tagged with the
// binary name so api and syncd lines are distinguishable in shared
// sinks. APP_ENV=dev (or development) switches to the console writer.
func NewLogger(env string) zerolog.Logger {
	service := "rooms_svc"
	if len(os.Args) > 0 && os.Args[0] != "" {
		service = filepath.Base(os.Args[0])
	}
	out := zerolog.New(os.Stdout)
	if env == "dev" || env == "development" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return out.With().Timestamp().Str("service", service).Logger()
}
