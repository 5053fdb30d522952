package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfHandler dials a Graylog GELF UDP endpoint and returns a JSON slog
// handler shipping records to it. The writer chunks oversized messages per
// the GELF spec, so records of any size are safe to send.
func NewGelfHandler(address string, level string) (slog.Handler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("dialing graylog at %s: %w", address, err)
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}), nil
}
