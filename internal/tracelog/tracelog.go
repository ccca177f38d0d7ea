// Package tracelog builds the runtime's diagnostic logger. Structured
// logging fans out through slog-multi the way
// other_examples/manifests/Manu343726-cucaracha composes its own
// slog handlers, separate from the raw trace-bytes file spec.md §6
// describes (that file is a plain io.Writer, not a log sink).
package tracelog

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// New builds the runtime's logger. Per-instruction tracing is emitted at
// slog.LevelDebug, so it costs nothing unless the caller raises the
// level — mirroring the original runtime's `log::trace!` call in its
// main loop, which likewise compiles out unless the trace level is
// enabled. When sinks is non-empty, records additionally fan out to each
// extra writer (e.g. a rotated file) alongside stderr.
func New(level slog.Level, sinks ...io.Writer) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	for _, sink := range sinks {
		handlers = append(handlers, slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}
