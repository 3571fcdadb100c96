package inventory

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kasuganosora/slotgrid/audit"
	"github.com/kasuganosora/slotgrid/cache"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel inventory events are published to.
const Channel = "inventory"

var publishedEvents = []string{
	hook.AfterSpawn, hook.AfterDragStart, hook.AfterPlace,
	hook.AfterTrash, hook.AfterClear, hook.AfterLoad, hook.OnQuantityChange,
}

var auditedEvents = []string{
	hook.AfterSpawn, hook.AfterDragStart, hook.AfterPlace,
	hook.AfterTrash, hook.AfterClear, hook.AfterLoad,
}

// RegisterPublisher forwards every inventory event to ps as a JSON message.
func RegisterPublisher(hooks *hook.Center, ps cache.PubSub, logger *zap.Logger) {
	fn := func(ctx context.Context, event string, data interface{}) (interface{}, error) {
		e, ok := data.(*Event)
		if !ok {
			return data, nil
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return data, err
		}
		if err := ps.Publish(ctx, Channel, string(raw)); err != nil {
			logger.Warn("publish inventory event failed", zap.String("event", event), zap.Error(err))
		}
		return data, nil
	}
	for _, ev := range publishedEvents {
		hooks.Register(ev, 100, "publisher", fn)
	}
}

// RegisterAudit records every inventory action except quantity changes in the
// placement log. The trace ID comes from the context the action ran with.
func RegisterAudit(hooks *hook.Center, svc *audit.Service) {
	fn := func(ctx context.Context, event string, data interface{}) (interface{}, error) {
		e, ok := data.(*Event)
		if !ok {
			return data, nil
		}
		entry := audit.Entry{
			TraceID:  audit.TraceID(ctx),
			Action:   event,
			TileID:   e.TileID,
			ItemID:   e.ItemID,
			Qty:      e.Qty,
			FromSlot: string(e.FromSlot),
			ToSlot:   string(e.ToSlot),
			Result:   e.Result,
		}
		if e.Point != nil {
			entry.Detail = map[string]float32{"x": e.Point.X(), "y": e.Point.Y(), "z": e.Point.Z()}
		}
		if e.Error != "" {
			entry.Err = errors.New(e.Error)
		}
		svc.Log(entry)
		return data, nil
	}
	for _, ev := range auditedEvents {
		hooks.Register(ev, 0, "audit", fn)
	}
}
