// Package logging configures the JSON slog logger shared by the cmds.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup builds a JSON logger tagged with the app name. An empty file path
// logs to stdout.
func Setup(app string, debug bool, file string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var writer io.Writer = os.Stdout
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		writer = f
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", app)), nil
}
