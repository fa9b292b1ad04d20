// Package mailbox hands frames from capture to processing through a single slot.
// A new frame overwrites one that has not been taken yet: frames are dropped, never queued.
package mailbox

import (
	"context"
	"sync"
	"sync/atomic"

	"yolo-webcam-go/internal/models"
)

type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frame  *models.RawFrame
	closed bool

	offered atomic.Int64
	dropped atomic.Int64
}

func New() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Offer stores frame without blocking. It reports whether an untaken frame was overwritten.
// Offers after Close are discarded.
func (m *Mailbox) Offer(frame *models.RawFrame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.offered.Add(1)
	replaced := m.frame != nil
	if replaced {
		m.dropped.Add(1)
	}
	m.frame = frame
	m.cond.Signal()
	return replaced
}

// Take blocks until a frame is available and empties the slot.
// It returns nil once the mailbox is closed or ctx is done.
func (m *Mailbox) Take(ctx context.Context) *models.RawFrame {
	stop := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	for m.frame == nil && !m.closed && ctx.Err() == nil {
		m.cond.Wait()
	}
	if m.closed || ctx.Err() != nil {
		return nil
	}
	frame := m.frame
	m.frame = nil
	return frame
}

// Close wakes every waiting Take. Idempotent.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.frame = nil
	m.cond.Broadcast()
}

// Offered counts frames accepted by Offer
func (m *Mailbox) Offered() int64 {
	return m.offered.Load()
}

// Dropped counts frames overwritten before anyone took them
func (m *Mailbox) Dropped() int64 {
	return m.dropped.Load()
}
