package repository

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrWorkerStopped is delivered to requests submitted after Stop.
var ErrWorkerStopped = errors.New("repository: worker stopped")

// LoadResult is the reply to a Worker.Load request.
type LoadResult struct {
	Data *SaveData
	Err  error
}

type request struct {
	ctx  context.Context
	save *SaveData // nil for a load
	errc chan error
	load chan LoadResult
}

// Worker serializes repository I/O on one goroutine. Requests are served in
// submission order and every request gets exactly one reply.
type Worker struct {
	repo   Repository
	ch     chan *request
	stopCh chan struct{}
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewWorker starts a Worker over repo with a request queue of queueSize.
func NewWorker(repo Repository, queueSize int, logger *zap.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 16
	}
	w := &Worker{
		repo:   repo,
		ch:     make(chan *request, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Save enqueues data for writing. The returned channel yields one error (nil
// on success). Enqueueing blocks while the queue is full or until ctx ends.
func (w *Worker) Save(ctx context.Context, data *SaveData) <-chan error {
	req := &request{ctx: ctx, save: data, errc: make(chan error, 1)}
	if err := w.submit(ctx, req); err != nil {
		req.errc <- err
	}
	return req.errc
}

// Load enqueues a read of the saved snapshot.
func (w *Worker) Load(ctx context.Context) <-chan LoadResult {
	req := &request{ctx: ctx, load: make(chan LoadResult, 1)}
	if err := w.submit(ctx, req); err != nil {
		req.load <- LoadResult{Err: err}
	}
	return req.load
}

// Exists asks the repository directly; it does not touch the save file's
// contents and needs no ordering with pending writes.
func (w *Worker) Exists(ctx context.Context) (bool, error) {
	return w.repo.Exists(ctx)
}

func (w *Worker) submit(ctx context.Context, req *request) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWorkerStopped
	}
	select {
	case w.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop serves everything already queued and then shuts down the worker.
// It blocks until the worker goroutine has finished.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stopCh)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.ch:
			w.serve(req)
		case <-w.stopCh:
			for {
				select {
				case req := <-w.ch:
					w.serve(req)
				default:
					return
				}
			}
		}
	}
}

func (w *Worker) serve(req *request) {
	if req.save != nil {
		err := req.ctx.Err()
		if err == nil {
			err = w.repo.Save(req.ctx, req.save)
		}
		if err != nil {
			w.logger.Error("inventory save failed", zap.Error(err))
		} else {
			w.logger.Info("inventory saved", zap.Int("stacks", len(req.save.Stacks)))
		}
		req.errc <- err
		return
	}

	var res LoadResult
	if res.Err = req.ctx.Err(); res.Err == nil {
		res.Data, res.Err = w.repo.Load(req.ctx)
	}
	if res.Err != nil && !errors.Is(res.Err, ErrNoSave) {
		w.logger.Error("inventory load failed", zap.Error(res.Err))
	}
	req.load <- res
}
