// Package logging builds the slog logger used by the artifactpg command.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// Options selects the console format, level and optional Seq sink.
type Options struct {
	Level  string
	Format string // text or json
	SeqURL string

	// SeqFlushInterval bounds how long records wait in the Seq batch.
	// Default: 500ms
	SeqFlushInterval time.Duration
}

// ErrUnknownFormat is returned for a console format other than text or json.
var ErrUnknownFormat = errors.New("logging: unknown format")

// ParseLevel maps debug, info, warn and error to slog levels. An empty
// string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: invalid level %q", s)
	}
	return level, nil
}

// New builds a logger writing to w. When SeqURL is set, records are also
// shipped to Seq; the returned cleanup flushes and closes that sink.
func New(w io.Writer, opts Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		console = slog.NewTextHandler(w, handlerOpts)
	case "json":
		console = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	if opts.SeqURL == "" {
		return slog.New(console), func() {}, nil
	}

	flush := opts.SeqFlushInterval
	if flush <= 0 {
		flush = 500 * time.Millisecond
	}
	_, seqHandler := slogseq.NewLogger(
		opts.SeqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(flush),
		slogseq.WithHandlerOptions(handlerOpts),
	)

	logger := slog.New(&multiHandler{handlers: []slog.Handler{console, seqHandler}})
	cleanup := func() {
		seqHandler.Close()
	}
	return logger, cleanup, nil
}

// multiHandler forwards each record to every handler enabled for its level.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
