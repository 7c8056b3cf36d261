package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures the embedded key-value engine behind the mailbox
// and follower stores.
type BadgerOptions struct {
	Dir        string
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

// OpenBadger opens (or creates) the database described by opts.
func OpenBadger(opts BadgerOptions) (*badger.DB, error) {
	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, fmt.Errorf("badger: empty data directory")
		}
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, err
		}
		bo = badger.DefaultOptions(opts.Dir)
	}
	bo = bo.WithSyncWrites(opts.SyncWrites)

	if opts.Logger != nil {
		bo = bo.WithLogger(&badgerLogger{log: opts.Logger.With("component", "badger")})
	} else {
		bo = bo.WithLogger(nil)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", opts.Dir, err)
	}
	return db, nil
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	log *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.emit(slog.LevelError, format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.emit(slog.LevelWarn, format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.emit(slog.LevelDebug, format, args...) // badger is chatty at info
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.emit(slog.LevelDebug, format, args...)
}

func (l *badgerLogger) emit(level slog.Level, format string, args ...interface{}) {
	ctx := context.Background()
	if !l.log.Enabled(ctx, level) {
		return
	}
	l.log.Log(ctx, level, trimNewline(fmt.Sprintf(format, args...)))
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
