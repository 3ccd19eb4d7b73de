// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package recv

import "github.com/cmacro/wsrecv"

// assembler maintains the message currently being reassembled: its opcode,
// whether it carries permessage-deflate compressed payload, and the
// fragments decoded from each data frame seen so far. At most one message
// is ever in flight, per spec.md §3.
type assembler struct {
	active             bool
	opcode             wsrecv.OpCode
	compressed         bool
	fragments          [][]byte
	totalPayloadLength uint64
}

// inFlight reports whether a message is currently being assembled.
func (a *assembler) inFlight() bool { return a.active }

// start begins a new message with the given opcode (text or binary) and
// compressed flag, taken from the first fragment's rsv1 bit.
func (a *assembler) start(op wsrecv.OpCode, compressed bool) {
	a.active = true
	a.opcode = op
	a.compressed = compressed
	a.fragments = a.fragments[:0]
	a.totalPayloadLength = 0
}

// append stores a copy of payload as the next fragment. Fragments own their
// bytes (spec.md §3 Lifecycles), so the payload — which may be a view into
// the byte queue's pooled storage — is always copied here. final is true
// only when dispatching the last (fin) frame of the message; the running
// total only accumulates non-final fragments, per spec.md §3/§4.5.
func (a *assembler) append(payload []byte, final bool) {
	owned := chunkPool.Get(len(payload), len(payload))[:len(payload)]
	copy(owned, payload)
	a.fragments = append(a.fragments, owned)
	if !final {
		a.totalPayloadLength += uint64(len(payload))
	}
}

// finish concatenates every fragment into one buffer, returns it along
// with the message opcode, and clears all in-flight state including the
// running total. Compressed messages are inflated by the caller (the
// receiver, via the injected Extension) before finish is called — finish
// itself only concatenates whatever fragments were appended.
func (a *assembler) finish() (op wsrecv.OpCode, payload []byte) {
	total := 0
	for _, f := range a.fragments {
		total += len(f)
	}
	payload = make([]byte, 0, total)
	for _, f := range a.fragments {
		payload = append(payload, f...)
		chunkPool.Put(f[:cap(f)])
	}
	op = a.opcode

	a.active = false
	a.opcode = 0
	a.compressed = false
	a.fragments = a.fragments[:0]
	a.totalPayloadLength = 0

	return op, payload
}

// reset discards any in-flight message without emitting it, releasing
// fragment buffers back to the pool. Used when the receiver dies mid
// message.
func (a *assembler) reset() {
	for _, f := range a.fragments {
		chunkPool.Put(f[:cap(f)])
	}
	a.active = false
	a.opcode = 0
	a.compressed = false
	a.fragments = a.fragments[:0]
	a.totalPayloadLength = 0
}
