package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chhz0/tasklist/config"
	"github.com/chhz0/tasklist/core"
	"github.com/chhz0/tasklist/logging"
	"github.com/chhz0/tasklist/middleware"
	"github.com/chhz0/tasklist/retry"
	"github.com/chhz0/tasklist/storage"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitUserError = 2
)

// app 把配置、日志、存储和任务 Store 组装在一起
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *core.Store
	load    core.LoadResult
	closers []io.Closer
}

func openApp(ctx context.Context, opts *globalOptions, interactive bool) (*app, error) {
	cfg, err := config.Load(opts.configPath, opts.overrides())
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  logLevel(cfg.Log.Level, opts.verbose),
		File:   cfg.Log.File,
		Stderr: opts.verbose && !interactive,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	kv, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		a.Close()
		return nil, err
	}
	retries := retry.NewManager(cfg.RetryPolicy())
	retries.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Info("retrying storage call", "attempt", attempt, "delay", delay, "err", err)
	}
	kv = middleware.Chain(
		middleware.Logger(logger),
		middleware.Retry(retries),
		middleware.Timeout(cfg.Persistence.Timeout),
	)(kv)
	a.closers = append(a.closers, kv)

	a.store = core.NewStore(kv,
		core.WithKey(cfg.Key),
		core.WithLogger(logger),
		core.WithRequireDescription(cfg.RequireDescription),
	)
	a.load = a.store.Load(ctx)
	logger.Debug("tasklist started", "backend", cfg.Backend, "key", cfg.Key, "load", a.load.Outcome)
	return a, nil
}

// Close 逆序释放资源
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// warnLoad 非交互命令在标准错误上提示读取失败
func (a *app) warnLoad(w io.Writer) {
	if a.load.Outcome == core.LoadFailed {
		fmt.Fprintf(w, "warning: could not read saved tasks, starting empty: %v\n", a.load.Err)
	}
}

func logLevel(level string, verbose bool) string {
	if verbose {
		return "debug"
	}
	return level
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrPositionOutOfRange),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitFailure
	}
}
