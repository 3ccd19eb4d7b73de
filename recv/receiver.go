// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package recv

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/cmacro/wsrecv"
)

// state is the per-frame parsing state, distinct from the per-message
// state tracked by assembler. Control frames advance only this state;
// data frames advance both. See spec.md §4.5/§9.
type state uint8

const (
	wantHeader2 state = iota
	wantExtendedLen
	wantMask
	wantPayload
	inflating
	dead
)

// permessageDeflate is the extensions-map key a negotiated
// permessage-deflate collaborator is expected under.
const permessageDeflate = "permessage-deflate"

// coded is implemented by every error this package and wsrecv raise; it
// recovers the close status code on_error should report.
type coded interface {
	error
	Code() wsrecv.StatusCode
}

// Receiver is the push-driven WebSocket frame receiver. It consumes
// arbitrary-sized byte chunks via Add and emits fully reassembled messages
// through its callback fields. A Receiver is owned by exactly one logical
// connection and must not be driven from more than one goroutine.
type Receiver struct {
	OnText   func(text string)
	OnBinary func(data []byte)
	OnPing   func(payload []byte)
	OnPong   func(payload []byte)
	OnClose  func(code uint16, reason string)
	OnError  func(err error, code uint16)

	Logger wsrecv.Logger

	queue      byteQueue
	state      state
	curHeader  wsrecv.Header
	len7       byte
	msg        assembler
	maxPayload uint64
	ext        Extension
	dead       bool
}

// New builds a Receiver. extensions maps a negotiated extension's name
// (e.g. "permessage-deflate") to the collaborator implementing it; a nil or
// empty map disables rsv1 entirely. maxPayload of 0 means unbounded.
func New(extensions map[string]Extension, maxPayload uint64) *Receiver {
	r := &Receiver{maxPayload: maxPayload}
	if extensions != nil {
		r.ext = extensions[permessageDeflate]
	}
	return r
}

// Idle reports whether the receiver sits at a frame boundary with nothing
// buffered and no message in flight — a safe point for a caller to stop
// feeding it bytes without losing partially parsed state. A dead receiver
// always reports true, whatever bytes are still buffered.
func (r *Receiver) Idle() bool {
	return r.dead || (r.state == wantHeader2 && r.queue.len() == 0 && !r.msg.inFlight())
}

// TotalPayloadLength reports the sum of payload lengths of non-final data
// fragments of the message currently in flight, or 0 if no message is in
// flight or the last dispatched frame was final. Exposed for tests, per
// spec.md §6.
func (r *Receiver) TotalPayloadLength() uint64 {
	return r.msg.totalPayloadLength
}

// Add pushes chunk and pumps the state machine as far as the buffered
// bytes allow. Once the receiver is Dead (after an error, a close frame, or
// Cleanup), Add is a no-op.
func (r *Receiver) Add(chunk []byte) {
	if r.dead {
		return
	}
	r.queue.push(chunk)
	r.pump()
}

// Cleanup releases the deflate collaborator and the byte queue, nils every
// callback, and marks the receiver Dead. Safe to call more than once.
func (r *Receiver) Cleanup() {
	if r.dead {
		r.queue.cleanup()
		return
	}
	r.die(nil)
	r.queue.cleanup()
}

func (r *Receiver) pump() {
	for !r.dead {
		switch r.state {
		case wantHeader2:
			if !r.stepHeader2() {
				return
			}
		case wantExtendedLen:
			if !r.stepExtendedLen() {
				return
			}
		case wantMask:
			if !r.stepMask() {
				return
			}
		case wantPayload:
			if !r.stepPayload() {
				return
			}
		case inflating:
			return
		case dead:
			return
		}
	}
}

func (r *Receiver) stepHeader2() bool {
	b, ok := r.queue.consume(2)
	if !ok {
		return false
	}

	r.curHeader = wsrecv.Header{}
	r.curHeader.Fin = b[0]&(1<<7) != 0
	r.curHeader.Rsv1, r.curHeader.Rsv2, r.curHeader.Rsv3 = wsrecv.RsvBits((b[0] >> 4) & 0x7)
	r.curHeader.OpCode = wsrecv.OpCode(b[0] & 0x0f)
	r.curHeader.Masked = b[1]&(1<<7) != 0
	r.len7 = b[1] & 0x7f

	if r.len7 == 126 || r.len7 == 127 {
		r.state = wantExtendedLen
		return true
	}
	r.curHeader.Length = uint64(r.len7)
	return r.headerComplete()
}

func (r *Receiver) stepExtendedLen() bool {
	n := 2
	if r.len7 == 127 {
		n = 8
	}
	b, ok := r.queue.consume(n)
	if !ok {
		return false
	}
	if n == 2 {
		r.curHeader.Length = wsrecv.DecodeLen16(b)
	} else {
		length, err := wsrecv.DecodeLen64(b)
		if err != nil {
			r.fail(err)
			return false
		}
		r.curHeader.Length = length
	}
	return r.headerComplete()
}

// headerComplete runs once the full 2-14 byte header is known (payload
// length resolved, mask key not yet read). It validates the header and
// transitions to WantMask or WantPayload.
func (r *Receiver) headerComplete() bool {
	if err := validateHeader(r.curHeader, r.ext != nil, r.msg.inFlight()); err != nil {
		r.fail(err)
		return false
	}
	if r.curHeader.Masked {
		r.state = wantMask
	} else {
		r.state = wantPayload
	}
	return true
}

func (r *Receiver) stepMask() bool {
	b, ok := r.queue.consume(4)
	if !ok {
		return false
	}
	copy(r.curHeader.Mask[:], b)
	r.state = wantPayload
	return true
}

func (r *Receiver) stepPayload() bool {
	n := int(r.curHeader.Length)
	payload, ok := r.queue.consume(n)
	if !ok {
		return false
	}
	if r.curHeader.Masked {
		wsrecv.Cipher(payload, r.curHeader.Mask)
	}

	h := r.curHeader
	if h.OpCode.IsControl() {
		if err := r.dispatchControl(h, payload); err != nil {
			r.fail(err)
			return false
		}
		if r.dead {
			return false
		}
		r.state = wantHeader2
		return true
	}

	if err := r.dispatchData(h, payload); err != nil {
		r.fail(err)
		return false
	}
	// dispatchData sets r.state itself (WantHeader2 or Inflating).
	return !r.dead
}

func (r *Receiver) dispatchControl(h wsrecv.Header, payload []byte) error {
	switch h.OpCode {
	case wsrecv.OpPing:
		if r.OnPing != nil {
			r.OnPing(payload)
		}
	case wsrecv.OpPong:
		if r.OnPong != nil {
			r.OnPong(payload)
		}
	case wsrecv.OpClose:
		code, reason, err := parseCloseBody(payload)
		if err != nil {
			return err
		}
		r.die(func() {
			if r.OnClose != nil {
				r.OnClose(code, reason)
			}
		})
	}
	return nil
}

func (r *Receiver) dispatchData(h wsrecv.Header, payload []byte) error {
	if h.OpCode != wsrecv.OpContinuation {
		r.msg.start(h.OpCode, h.Rsv1)
	}

	projected := r.msg.totalPayloadLength + uint64(len(payload))
	if r.maxPayload > 0 && projected > r.maxPayload {
		return wsrecv.MessageTooBigError("cumulative payload exceeds max_payload")
	}

	if r.msg.compressed {
		ext := r.ext
		if ext == nil {
			return wsrecv.ProtocolError("rsv1 set but no extension installed")
		}
		r.state = inflating
		final := h.Fin
		ext.Decompress(payload, final, func(out []byte, err error) {
			r.onInflated(out, err, final)
		})
		return nil
	}

	r.msg.append(payload, h.Fin)
	if h.Fin {
		if err := r.finishMessage(); err != nil {
			return err
		}
	}
	r.state = wantHeader2
	return nil
}

func (r *Receiver) onInflated(out []byte, err error, final bool) {
	if r.dead {
		return
	}
	if err != nil {
		r.fail(err)
		return
	}

	r.msg.append(out, final)
	if !final && r.maxPayload > 0 && r.msg.totalPayloadLength > r.maxPayload {
		r.fail(wsrecv.MessageTooBigError("decompressed payload exceeds max_payload"))
		return
	}
	if final {
		if err := r.finishMessage(); err != nil {
			r.fail(err)
			return
		}
	}

	r.state = wantHeader2
	r.pump()
}

// finishMessage concatenates the in-flight message's fragments, validates
// text payloads as UTF-8, and invokes the matching callback. The assembler
// has already reset total_payload_length to 0 by the time this returns,
// satisfying the "reset before callback" ordering from spec.md's design
// notes.
func (r *Receiver) finishMessage() error {
	op, payload := r.msg.finish()
	switch op {
	case wsrecv.OpText:
		if !utf8.Valid(payload) {
			return wsrecv.ErrInvalidUTF8
		}
		if r.OnText != nil {
			r.OnText(string(payload))
		}
	case wsrecv.OpBinary:
		if r.OnBinary != nil {
			r.OnBinary(payload)
		}
	}
	return nil
}

func (r *Receiver) fail(err error) {
	code := wsrecv.StatusInternalServerErr
	if c, ok := err.(coded); ok {
		code = c.Code()
	}
	if r.Logger != nil {
		r.Logger.Warnf("wsrecv: closing with %d: %v", code, err)
	}
	r.die(func() {
		if r.OnError != nil {
			r.OnError(err, uint16(code))
		}
	})
}

// die marks the receiver terminal, invokes cb (the single callback allowed
// to fire after death, per spec.md §3), and then nils every callback field
// so later events — including ones a recursive Add from inside cb might
// have queued — are silently dropped.
func (r *Receiver) die(cb func()) {
	if r.dead {
		return
	}
	r.dead = true
	r.state = dead
	r.msg.reset()
	if r.ext != nil {
		r.ext.Cleanup()
	}
	if cb != nil {
		cb()
	}
	r.OnText = nil
	r.OnBinary = nil
	r.OnPing = nil
	r.OnPong = nil
	r.OnClose = nil
	r.OnError = nil
}

// parseCloseBody decodes a close frame's optional body: a 2-byte
// big-endian status code followed by a UTF-8 reason. An empty body reports
// the synthetic StatusNoStatusRcvd (1005), per spec.md §6/§8 and the
// convention recorded in SPEC_FULL.md §10.
func parseCloseBody(payload []byte) (code uint16, reason string, err error) {
	if len(payload) == 0 {
		return uint16(wsrecv.StatusNoStatusRcvd), "", nil
	}
	if len(payload) == 1 {
		return 0, "", wsrecv.ProtocolError("close frame payload of length 1")
	}
	code = binary.BigEndian.Uint16(payload[:2])
	if !wsrecv.ValidCloseCode(wsrecv.StatusCode(code)) {
		return 0, "", wsrecv.ProtocolError("invalid close code")
	}
	if !utf8.Valid(payload[2:]) {
		return 0, "", wsrecv.ErrInvalidUTF8
	}
	return code, string(payload[2:]), nil
}
