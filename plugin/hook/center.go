package hook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrInterrupt signals that a handler wants to stop further processing.
// For Before* events it also vetoes the operation.
var ErrInterrupt = errors.New("hook interrupted")

// Fn is a hook handler.
// Returns (modified data, nil) to continue, or (data, ErrInterrupt) to stop.
type Fn func(ctx context.Context, event string, data interface{}) (interface{}, error)

type entry struct {
	priority int
	seq      int
	fn       Fn
	name     string
}

// Center dispatches inventory events to registered handlers.
type Center struct {
	mu     sync.RWMutex
	hooks  map[string][]*entry
	seq    int
	logger *zap.Logger
}

// New creates an empty Center.
func New(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{hooks: make(map[string][]*entry), logger: logger}
}

// Register adds fn for event. Lower priority runs first; equal priorities run
// in registration order. name is used for Unregister.
func (c *Center) Register(event string, priority int, name string, fn Fn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	entries := append(c.hooks[event], &entry{priority: priority, seq: c.seq, fn: fn, name: name})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	c.hooks[event] = entries
}

// Unregister removes every handler called name from event.
func (c *Center) Unregister(event, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[event] = without(c.hooks[event], name)
}

// UnregisterAll removes every handler called name from all events.
func (c *Center) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for event, entries := range c.hooks {
		c.hooks[event] = without(entries, name)
	}
}

// Count returns how many handlers are registered for event.
func (c *Center) Count(event string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hooks[event])
}

func without(entries []*entry, name string) []*entry {
	n := 0
	for _, e := range entries {
		if e.name != name {
			entries[n] = e
			n++
		}
	}
	return entries[:n]
}

// Trigger runs the handlers for event in order, threading data through them.
// ErrInterrupt stops the chain and is returned. Other handler errors and
// panics are logged and the chain continues with the previous data.
func (c *Center) Trigger(ctx context.Context, event string, data interface{}) (interface{}, error) {
	c.mu.RLock()
	entries := make([]*entry, len(c.hooks[event]))
	copy(entries, c.hooks[event])
	c.mu.RUnlock()

	for _, e := range entries {
		out, err := c.call(ctx, e, event, data)
		if errors.Is(err, ErrInterrupt) {
			return out, err
		}
		if err != nil {
			c.logger.Warn("hook handler failed",
				zap.String("event", event),
				zap.String("handler", e.name),
				zap.Error(err))
			continue
		}
		data = out
	}
	return data, nil
}

func (c *Center) call(ctx context.Context, e *entry, event string, data interface{}) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.fn(ctx, event, data)
}

// ---- Inventory event names ----

const (
	BeforeSplit      = "before_split" // ErrInterrupt refuses the split
	AfterSpawn       = "after_spawn"
	AfterDragStart   = "after_drag_start"
	AfterPlace       = "after_place"
	AfterTrash       = "after_trash"
	AfterClear       = "after_clear"
	AfterLoad        = "after_load"
	OnQuantityChange = "on_quantity_change"
)
