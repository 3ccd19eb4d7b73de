// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package msutil

import (
	"bytes"
	"io"

	ms "github.com/cmacro/wsrecv"
)

// Writer buffers one outgoing message and flushes it to dst as a single,
// final WebSocket frame on Flush. Frames written with State ==
// StateClientSide are masked with a freshly generated key, per RFC 6455
// section 5.3.
type Writer struct {
	dst    io.Writer
	state  ms.State
	opcode ms.OpCode
	buf    bytes.Buffer
}

// NewWriter returns a Writer that flushes opcode-tagged frames to dst.
func NewWriter(dst io.Writer, state ms.State, opcode ms.OpCode) *Writer {
	return &Writer{dst: dst, state: state, opcode: opcode}
}

// Reset reconfigures w for a new message without allocating, discarding
// any buffered bytes from a previous, unflushed message.
func (w *Writer) Reset(dst io.Writer, state ms.State, opcode ms.OpCode) {
	w.dst = dst
	w.state = state
	w.opcode = opcode
	w.buf.Reset()
}

// Write buffers p for the next Flush.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Flush writes the buffered bytes to the destination as a single frame and
// clears the buffer.
func (w *Writer) Flush() error {
	f := ms.NewFrame(w.opcode, true, w.buf.Bytes())
	if w.state == ms.StateClientSide {
		f = ms.MaskFrame(f)
	}
	w.buf.Reset()
	return ms.WriteFrame(w.dst, f)
}

// WriteControl writes a single control frame (ping, pong or close) directly
// to dst, bypassing buffering since control frames are never fragmented.
func WriteControl(dst io.Writer, state ms.State, op ms.OpCode, payload []byte) error {
	f := ms.NewFrame(op, true, payload)
	if state == ms.StateClientSide {
		f = ms.MaskFrame(f)
	}
	return ms.WriteFrame(dst, f)
}
