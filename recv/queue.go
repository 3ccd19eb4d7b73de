// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

// Package recv implements the push-driven WebSocket frame receiver: a
// finite-state machine that consumes arbitrary-sized byte chunks and emits
// fully reassembled messages through a set of callbacks.
package recv

import (
	"github.com/gobwas/pool/pbytes"
)

// chunkPool hands out pooled buffers for queued chunks. Sizes up to 64KiB
// cover the overwhelming majority of WebSocket frames seen in practice;
// larger pushes fall back to a plain allocation inside the pool itself.
var chunkPool = pbytes.New(64, 64*1024)

// byteQueue is an append-and-consume buffer of owned byte chunks. It is the
// only place raw transport bytes are held; every higher-level stage in this
// package consumes from it rather than inspecting chunks directly.
//
// Consume and peek return a slice that is valid until the next call to
// push, peek or consume — callers that need to retain bytes past that
// point (the message assembler's fragments) must copy them out first.
type byteQueue struct {
	chunks []queuedChunk
	length int
}

type queuedChunk struct {
	buf  []byte // pooled backing array, returned to chunkPool once drained
	data []byte // buf[:n], the chunk's live bytes
	off  int    // bytes of data already consumed
}

// push appends a copy of p to the queue. p is copied immediately since the
// caller may reuse or discard it as soon as Add returns.
func (q *byteQueue) push(p []byte) {
	if len(p) == 0 {
		return
	}
	buf := chunkPool.Get(len(p), len(p))
	n := copy(buf, p)
	q.chunks = append(q.chunks, queuedChunk{buf: buf, data: buf[:n]})
	q.length += n
}

// len reports the total number of unconsumed bytes across all chunks.
func (q *byteQueue) len() int {
	return q.length
}

// peek returns the next n bytes without consuming them, or ok=false if
// fewer than n bytes are buffered.
func (q *byteQueue) peek(n int) (p []byte, ok bool) {
	return q.span(n, false)
}

// consume returns the next n bytes and removes them from the queue, or
// ok=false if fewer than n bytes are buffered (in which case nothing is
// consumed).
func (q *byteQueue) consume(n int) (p []byte, ok bool) {
	return q.span(n, true)
}

// span implements peek and consume: it returns a contiguous view of n
// bytes, copying only when the span crosses a chunk boundary, and advances
// (or drops) chunks when advance is true.
func (q *byteQueue) span(n int, advance bool) (p []byte, ok bool) {
	if n == 0 {
		return nil, true
	}
	if q.length < n {
		return nil, false
	}

	first := &q.chunks[0]
	avail := len(first.data) - first.off
	if avail >= n {
		p = first.data[first.off : first.off+n]
		if advance {
			first.off += n
			q.length -= n
			if first.off == len(first.data) {
				chunkPool.Put(first.buf)
				q.chunks = q.chunks[1:]
			}
		}
		return p, true
	}

	// The span straddles two or more chunks: copy it into a scratch
	// buffer since no single chunk holds it contiguously.
	scratch := chunkPool.Get(n, n)[:n]
	copied := 0
	consumed := 0
	for copied < n {
		c := &q.chunks[consumed]
		take := len(c.data) - c.off
		if take > n-copied {
			take = n - copied
		}
		copy(scratch[copied:], c.data[c.off:c.off+take])
		copied += take
		if advance {
			c.off += take
			q.length -= take
		}
		if c.off == len(c.data) || !advance {
			if advance {
				chunkPool.Put(c.buf)
			}
			consumed++
		} else {
			break
		}
	}
	if advance {
		q.chunks = q.chunks[consumed:]
	}
	return scratch, true
}

// cleanup releases every pooled chunk buffer back to chunkPool and resets
// the queue to empty.
func (q *byteQueue) cleanup() {
	for _, c := range q.chunks {
		chunkPool.Put(c.buf)
	}
	q.chunks = nil
	q.length = 0
}
