package root

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"habitline/internal/engine"
	"habitline/internal/habit"
	"habitline/internal/storage"
)

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path, err := storage.DefaultDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger()
	svc := engine.NewService(db, log)
	if err := svc.Start(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, func() {
		_ = log.Sync()
		cleanup()
	}, nil
}

// parseDateFlag accepts "" (meaning today) or a YYYY-MM-DD day key.
func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return habit.ParseDayKey(s)
}
