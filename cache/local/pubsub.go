package local

import (
	"context"
	"sync"
	"sync/atomic"
)

type Message struct {
	Channel string
	Payload string
}

// subscription owns one outbound channel shared by all of its topics.
type subscription struct {
	ch     chan *Message
	topics []string
	closed bool
}

// PubSub fans messages out in-process. Delivery never blocks the publisher:
// a subscriber whose buffer is full misses the message and Dropped grows.
type PubSub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscription]struct{}
	buf     int
	dropped atomic.Int64
	closed  bool
}

func NewPubSub(buf int) *PubSub {
	if buf <= 0 {
		buf = 256
	}
	return &PubSub{subs: make(map[string]map[*subscription]struct{}), buf: buf}
}

func (ps *PubSub) BufSize() int { return ps.buf }

// Dropped counts messages lost to full subscriber buffers.
func (ps *PubSub) Dropped() int64 { return ps.dropped.Load() }

// Publish holds the read lock while sending so a concurrent cancel cannot
// close a channel mid-send.
func (ps *PubSub) Publish(_ context.Context, channel, payload string) error {
	msg := &Message{Channel: channel, Payload: payload}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for s := range ps.subs[channel] {
		select {
		case s.ch <- msg:
		default:
			ps.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe returns a channel receiving messages of every listed topic.
// After Close it returns a closed channel.
func (ps *PubSub) Subscribe(_ context.Context, channels ...string) (<-chan *Message, func(), error) {
	s := &subscription{ch: make(chan *Message, ps.buf), topics: channels}

	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}, nil
	}
	for _, topic := range channels {
		set := ps.subs[topic]
		if set == nil {
			set = make(map[*subscription]struct{})
			ps.subs[topic] = set
		}
		set[s] = struct{}{}
	}
	ps.mu.Unlock()

	var once sync.Once
	return s.ch, func() { once.Do(func() { ps.drop(s) }) }, nil
}

func (ps *PubSub) drop(s *subscription) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.end(s)
}

// end detaches s and closes its channel once. Caller holds mu.
func (ps *PubSub) end(s *subscription) {
	if s.closed {
		return
	}
	s.closed = true
	for _, topic := range s.topics {
		if set, ok := ps.subs[topic]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(ps.subs, topic)
			}
		}
	}
	close(s.ch)
}

// Close ends every subscription.
func (ps *PubSub) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	seen := make(map[*subscription]struct{})
	for _, set := range ps.subs {
		for s := range set {
			seen[s] = struct{}{}
		}
	}
	for s := range seen {
		ps.end(s)
	}
}
