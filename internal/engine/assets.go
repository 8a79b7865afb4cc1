package engine

import (
	"DoorScene/internal/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// AssetLoader decodes assets on a bounded worker pool and reports each
// result back on the render thread through post.
type AssetLoader struct {
	ctx  context.Context
	pool pond.Pool
	post func(context.Context, func()) bool
}

func NewAssetLoader(ctx context.Context, workers int, post func(context.Context, func()) bool) *AssetLoader {
	if workers < 1 {
		workers = 1
	}
	return &AssetLoader{
		ctx:  ctx,
		pool: pond.NewPool(workers, pond.WithContext(ctx)),
		post: post,
	}
}

// ErrLoadPanic marks a load that panicked instead of returning an error.
var ErrLoadPanic = errors.New("asset load panicked")

// Load runs load on a worker, then onDone with its error on the render
// thread. onDone is skipped when the loader shuts down first.
func (l *AssetLoader) Load(name string, load func(ctx context.Context) error, onDone func(err error)) {
	start := time.Now()
	l.pool.Submit(func() {
		err := runLoad(l.ctx, load)
		logDone(name, start, err)
		l.post(l.ctx, func() { onDone(err) })
	})
}

type loadResult struct {
	index int
	err   error
}

// LoadAll runs every load concurrently and calls onDone once, on the render
// thread, after all of them have returned. Failures are joined into one
// error; a failing load does not cut the others short.
func (l *AssetLoader) LoadAll(name string, loads []func(ctx context.Context) error, onDone func(err error)) {
	start := time.Now()
	results := make(chan loadResult, len(loads))
	for i, load := range loads {
		i, load := i, load
		l.pool.Submit(func() {
			results <- loadResult{index: i, err: runLoad(l.ctx, load)}
		})
	}
	// Collect outside the pool so a small pool cannot starve the collector.
	go func() {
		errs := make([]error, len(loads))
		for range loads {
			select {
			case r := <-results:
				errs[r.index] = r.err
			case <-l.ctx.Done():
				return
			}
		}
		err := errors.Join(errs...)
		logDone(name, start, err)
		l.post(l.ctx, func() { onDone(err) })
	}()
}

// runLoad turns a panic in load into an error so the caller still hears
// back.
func runLoad(ctx context.Context, load func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoadPanic, r)
		}
	}()
	return load(ctx)
}

func logDone(name string, start time.Time, err error) {
	if err != nil {
		logger.Log.Error("Asset failed",
			zap.String("asset", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}
	logger.Log.Info("Asset loaded",
		zap.String("asset", name),
		zap.Duration("elapsed", time.Since(start)))
}

// Stop waits for running tasks and drops queued ones.
func (l *AssetLoader) Stop() {
	l.pool.StopAndWait()
}
