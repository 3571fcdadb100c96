package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/slotgrid/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry describes one inventory action to be recorded.
type Entry struct {
	TraceID  string
	Action   string
	TileID   string
	ItemID   string
	Qty      int
	FromSlot string
	ToSlot   string
	Result   string
	Detail   interface{}
	Err      error
}

// Service writes placement logs asynchronously in batches.
type Service struct {
	db       *gorm.DB
	ch       chan *model.PlacementLog
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		ch:     make(chan *model.PlacementLog, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an entry. It never blocks; entries are dropped with a warning
// when the queue is full.
func (svc *Service) Log(e Entry) {
	record := &model.PlacementLog{
		TraceID:  e.TraceID,
		Action:   e.Action,
		TileID:   e.TileID,
		ItemID:   e.ItemID,
		Qty:      e.Qty,
		FromSlot: e.FromSlot,
		ToSlot:   e.ToSlot,
		Result:   e.Result,
	}
	if e.Detail != nil {
		if raw, err := json.Marshal(e.Detail); err == nil {
			record.Detail = datatypes.JSON(raw)
		}
	}
	if e.Err != nil {
		record.Error = e.Err.Error()
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", e.Action))
	}
}

// Stop flushes remaining entries and waits for the worker, or until ctx
// is done, whichever comes first.
func (svc *Service) Stop(ctx context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	done := make(chan struct{})
	go func() {
		svc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		svc.logger.Warn("audit stop timed out, entries may be lost", zap.Error(ctx.Err()))
	}
}

// ByTrace returns the flushed entries of one request, oldest first.
func (svc *Service) ByTrace(ctx context.Context, traceID string) ([]model.PlacementLog, error) {
	var logs []model.PlacementLog
	err := svc.db.WithContext(ctx).
		Where("trace_id = ?", traceID).
		Order("id").
		Find(&logs).Error
	return logs, err
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.PlacementLog, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
