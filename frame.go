// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsrecv

import (
	"bytes"
	"crypto/rand"
	"io"
)

// Frame is a frame header paired with its (already unmasked) payload.
type Frame struct {
	Header  Header
	Payload []byte
}

// NewFrame builds a single, unmasked frame carrying payload with the given
// opcode and fin bit.
func NewFrame(op OpCode, fin bool, payload []byte) Frame {
	return Frame{
		Header: Header{
			Fin:    fin,
			OpCode: op,
			Length: uint64(len(payload)),
		},
		Payload: payload,
	}
}

// NewTextFrame builds a single, final, unmasked text frame.
func NewTextFrame(payload []byte) Frame { return NewFrame(OpText, true, payload) }

// NewBinaryFrame builds a single, final, unmasked binary frame.
func NewBinaryFrame(payload []byte) Frame { return NewFrame(OpBinary, true, payload) }

// NewPingFrame builds a final, unmasked ping frame.
func NewPingFrame(payload []byte) Frame { return NewFrame(OpPing, true, payload) }

// NewPongFrame builds a final, unmasked pong frame.
func NewPongFrame(payload []byte) Frame { return NewFrame(OpPong, true, payload) }

// NewCloseFrame builds a final, unmasked close frame whose payload is body
// (usually produced by NewCloseFrameBody).
func NewCloseFrame(body []byte) Frame { return NewFrame(OpClose, true, body) }

// NewCloseFrameBody encodes a close code and UTF-8 reason into a close
// frame body: a 2-byte big-endian code followed by the reason bytes.
func NewCloseFrameBody(code StatusCode, reason string) []byte {
	body := make([]byte, 2+len(reason))
	EncodeLen16(body[:2], uint64(code))
	copy(body[2:], strToBytes(reason))
	return body
}

// MaskFrame returns a copy of f with a freshly generated mask key applied
// to its payload and Header.Masked set.
func MaskFrame(f Frame) Frame {
	key, err := NewMask(rand.Reader)
	if err != nil {
		panic(err)
	}
	return MaskFrameWith(f, key)
}

// MaskFrameWith is like MaskFrame but uses the given key instead of
// generating a random one; it exists for deterministic tests.
func MaskFrameWith(f Frame, key [4]byte) Frame {
	payload := append([]byte(nil), f.Payload...)
	Cipher(payload, key)
	f.Header.Masked = true
	f.Header.Mask = key
	f.Payload = payload
	return f
}

// WriteFrame writes f's header and payload to w. The payload is written
// exactly as stored on f; callers that built f with MaskFrame already have
// a masked payload here.
func WriteFrame(w io.Writer, f Frame) error {
	f.Header.Length = uint64(len(f.Payload))
	if err := WriteHeader(w, f.Header); err != nil {
		return err
	}
	_, err := w.Write(f.Payload)
	return err
}

// MustWriteFrame is WriteFrame but panics on error; it exists for test
// fixture construction where an error is a programmer error.
func MustWriteFrame(w io.Writer, f Frame) {
	if err := WriteFrame(w, f); err != nil {
		panic(err)
	}
}

// ReadFrame blocks reading one frame (header plus payload) from r and
// unmasks the payload if the header says it is masked.
func ReadFrame(r io.Reader) (Frame, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Frame{}, err
	}
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, err
	}
	if h.Masked {
		Cipher(payload, h.Mask)
	}
	return Frame{Header: h, Payload: payload}, nil
}

// MustReadFrame is ReadFrame but panics on error.
func MustReadFrame(r io.Reader) Frame {
	f, err := ReadFrame(r)
	if err != nil {
		panic(err)
	}
	return f
}

// MustCompileFrame renders f to its wire bytes; it panics on error and is
// used by tests to build expected output for comparison.
func MustCompileFrame(f Frame) []byte {
	var buf bytes.Buffer
	MustWriteFrame(&buf, f)
	return buf.Bytes()
}

// String renders a frame for debug logging, reusing the payload bytes as a
// string view without copying.
func (f Frame) String() string {
	return f.Header.OpCode.String() + " " + btsToString(f.Payload)
}
