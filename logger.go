package bigfield

import (
	"context"
	"log/slog"
	"os"

	"github.com/ipfs/go-cid"
)

// Logger wraps slog.Logger with bigfield-specific helpers so that every
// operation logs with the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithLeaf adds the leaf interval to the logger.
func (l *Logger) WithLeaf(m Meta) *Logger {
	return &Logger{
		Logger: l.Logger.With("first", m.FirstValue, "last", m.LastValue),
	}
}

// LogSet logs a set operation.
func (l *Logger) LogSet(ctx context.Context, pos uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set failed",
			"position", pos,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "set completed",
			"position", pos,
		)
	}
}

// LogGet logs a failed get. Successful gets are not logged.
func (l *Logger) LogGet(ctx context.Context, pos uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "get failed",
			"position", pos,
			"error", err,
		)
	}
}

// LogSplit logs a completed leaf split.
func (l *Logger) LogSplit(ctx context.Context, old, bottom, top Meta, leaves int) {
	l.InfoContext(ctx, "leaf split",
		"first", old.FirstValue,
		"last", old.LastValue,
		"boundary", top.FirstValue,
		"bottom_runs", bottom.RunCount,
		"top_runs", top.RunCount,
		"leaves", leaves,
	)
}

// LogSplitDegenerate logs a split that was skipped.
func (l *Logger) LogSplitDegenerate(ctx context.Context, m Meta, pos uint64) {
	l.WithLeaf(m).DebugContext(ctx, "split skipped",
		"position", pos,
		"runs", m.RunCount,
		"error", ErrSplitDegenerate,
	)
}

// LogCommit logs a commit.
func (l *Logger) LogCommit(ctx context.Context, root cid.Cid, leaves int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"leaves", leaves,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"root", root.String(),
			"leaves", leaves,
		)
	}
}

// LogLoad logs a load.
func (l *Logger) LogLoad(ctx context.Context, root cid.Cid, leaves int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"root", root.String(),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"root", root.String(),
			"leaves", leaves,
		)
	}
}
