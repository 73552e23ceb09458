// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stream

import (
	"context"
	"sync"

	"github.com/zeebo/errs"
)

// ConcurrentSink lets many goroutines hand frames to one Sink. Frames are
// queued and whichever writer holds the sink drains the queue; the others
// return immediately.
type ConcurrentSink struct {
	mu   sync.Mutex
	sink *Sink

	backlogMu sync.Mutex
	backlog   [][]byte
}

// NewConcurrentSink wraps sink.
func NewConcurrentSink(sink *Sink) *ConcurrentSink {
	return &ConcurrentSink{sink: sink}
}

// Write queues a copy of the frame and processes the queue if no other
// writer is doing so. Errors of individual frames processed by this call
// are combined; frames handled by another writer report their errors
// there. Once every Write returned the queue is empty. Flush is still needed
// to wait for a drain that is in progress.
func (c *ConcurrentSink) Write(ctx context.Context, data []byte) error {
	c.backlogMu.Lock()
	c.backlog = append(c.backlog, append([]byte(nil), data...))
	c.backlogMu.Unlock()

	var group errs.Group
	for c.mu.TryLock() {
		group.Add(c.drain(ctx))
		c.mu.Unlock()

		// frames queued between drain returning and Unlock.
		if c.backlogLen() == 0 {
			break
		}
	}
	return group.Err()
}

func (c *ConcurrentSink) backlogLen() int {
	c.backlogMu.Lock()
	defer c.backlogMu.Unlock()
	return len(c.backlog)
}

// Flush waits for the sink and processes every queued frame.
func (c *ConcurrentSink) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drain(ctx)
}

// NumDone returns how many streams were delivered.
func (c *ConcurrentSink) NumDone() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink.NumDone()
}

// NumStreams returns how many streams are being decoded.
func (c *ConcurrentSink) NumStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink.NumStreams()
}

func (c *ConcurrentSink) drain(ctx context.Context) error {
	var group errs.Group
	for {
		c.backlogMu.Lock()
		if len(c.backlog) == 0 {
			c.backlogMu.Unlock()
			return group.Err()
		}
		data := c.backlog[0]
		c.backlog[0] = nil
		c.backlog = c.backlog[1:]
		c.backlogMu.Unlock()

		if _, err := c.sink.Write(ctx, data); err != nil {
			group.Add(err)
		}
	}
}
