package server

import "sync"

// outbox is an unbounded FIFO mailbox. §5 calls for writer queues that never
// apply backpressure to a sender — a plain buffered channel would have to
// pick a capacity and either block or drop once full, so the queue itself
// is a growable slice guarded by a mutex, with a channel only as the
// wakeup signal for the one goroutine draining it.
type outbox struct {
	mu     sync.Mutex
	items  []interface{}
	signal chan struct{}
	closed bool
}

func newOutbox() *outbox {
	return &outbox{signal: make(chan struct{}, 1)}
}

// push enqueues frame. Never blocks, never drops: true to §5's documented
// "unbounded, to avoid head-of-line blocking" design, with the memory-growth
// risk that implies for a slow recipient.
func (o *outbox) push(frame interface{}) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.items = append(o.items, frame)
	o.mu.Unlock()

	select {
	case o.signal <- struct{}{}:
	default:
	}
}

// drain pops everything currently queued, or blocks until push or close
// wakes it. Returns ok=false once the outbox is closed and empty.
func (o *outbox) drain() (frames []interface{}, ok bool) {
	for {
		o.mu.Lock()
		if len(o.items) > 0 {
			frames, o.items = o.items, nil
			o.mu.Unlock()
			return frames, true
		}
		if o.closed {
			o.mu.Unlock()
			return nil, false
		}
		o.mu.Unlock()
		<-o.signal
	}
}

// close marks the outbox closed and wakes a blocked drain for the last time.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	select {
	case o.signal <- struct{}{}:
	default:
	}
}
