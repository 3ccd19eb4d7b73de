// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package recv

import (
	"bytes"
	"compress/flate"
	"encoding/hex"
	"testing"

	"github.com/cmacro/wsrecv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// addSplit feeds data to r one byte at a time, per spec scenario 1: any
// chunking of a valid stream must yield identical callbacks.
func addSplit(r *Receiver, data []byte) {
	for _, b := range data {
		r.Add([]byte{b})
	}
}

func TestUnmaskedTextHello(t *testing.T) {
	r := New(nil, 0)
	var got string
	r.OnText = func(s string) { got = s }

	r.Add(mustHex(t, "810548656c6c6f"))

	assert.Equal(t, "Hello", got)
}

func TestUnmaskedTextHelloSplitByteAtATime(t *testing.T) {
	r := New(nil, 0)
	var got string
	r.OnText = func(s string) { got = s }

	addSplit(r, mustHex(t, "810548656c6c6f"))

	assert.Equal(t, "Hello", got)
}

func TestEmptyCloseReportsSyntheticNoStatus(t *testing.T) {
	r := New(nil, 0)
	var code uint16
	var reason string
	r.OnClose = func(c uint16, rs string) { code, reason = c, rs }

	r.Add(mustHex(t, "8800"))

	assert.Equal(t, uint16(wsrecv.StatusNoStatusRcvd), code)
	assert.Equal(t, "", reason)
}

func TestCloseWithReservedCodeFailsWithProtocolError(t *testing.T) {
	r := New(nil, 0)
	var errored bool
	var code uint16
	r.OnError = func(_ error, c uint16) { errored = true; code = c }
	var closed bool
	r.OnClose = func(_ uint16, _ string) { closed = true }

	r.Add(wsrecv.MustCompileFrame(wsrecv.NewCloseFrame(wsrecv.NewCloseFrameBody(wsrecv.StatusNoStatusRcvd, ""))))

	assert.True(t, errored)
	assert.Equal(t, uint16(wsrecv.StatusProtocolError), code)
	assert.False(t, closed)
}

func TestMaskedText(t *testing.T) {
	r := New(nil, 0)
	var got string
	r.OnText = func(s string) { got = s }

	r.Add(mustHex(t, "81933483a86801b992524fa1c60959e68a5216e6cb005ba1d5"))

	assert.Equal(t, `5:::{"name":"echo"}`, got)
}

func TestFragmentedWithPingInterleaved(t *testing.T) {
	r := New(nil, 0)
	var pinged bool
	var text string
	var order []string
	r.OnPing = func(_ []byte) { pinged = true; order = append(order, "ping") }
	r.OnText = func(s string) { text = s; order = append(order, "text") }

	as := bytes.Repeat([]byte("A"), 150)
	first := wsrecv.NewFrame(wsrecv.OpText, false, as)
	ping := wsrecv.NewPingFrame([]byte("Hello"))
	cont := wsrecv.NewFrame(wsrecv.OpContinuation, true, as)

	r.Add(wsrecv.MustCompileFrame(first))
	r.Add(wsrecv.MustCompileFrame(ping))
	r.Add(wsrecv.MustCompileFrame(cont))

	assert.True(t, pinged)
	assert.Equal(t, bytes.Repeat([]byte("A"), 300), []byte(text))
	assert.Equal(t, []string{"ping", "text"}, order)
}

func TestTotalPayloadLengthDuringFragmentation(t *testing.T) {
	r := New(nil, 10)
	var observations []uint64

	observations = append(observations, r.TotalPayloadLength())
	r.Add(mustHex(t, "01024865"))
	observations = append(observations, r.TotalPayloadLength())
	r.Add(mustHex(t, "80036c6c6f"))
	observations = append(observations, r.TotalPayloadLength())

	assert.Equal(t, []uint64{0, 2, 0}, observations)
}

func TestOversizedMessageFailsWithMessageTooBig(t *testing.T) {
	r := New(nil, 20*1024)
	var errored bool
	var code uint16
	var gotBinary bool
	r.OnError = func(_ error, c uint16) { errored = true; code = c }
	r.OnBinary = func(_ []byte) { gotBinary = true }

	payload := bytes.Repeat([]byte{0x42}, 200*1024)
	frame := wsrecv.MaskFrameWith(wsrecv.NewBinaryFrame(payload), [4]byte{1, 2, 3, 4})

	r.Add(wsrecv.MustCompileFrame(frame))

	assert.True(t, errored)
	assert.Equal(t, uint16(wsrecv.StatusMessageTooBig), code)
	assert.False(t, gotBinary)
}

func TestPostErrorQuarantine(t *testing.T) {
	r := New(map[string]Extension{"permessage-deflate": &stubExtension{
		err: wsrecv.MessageTooBigError("boom"),
	}}, 0)

	errCount := 0
	r.OnError = func(_ error, _ uint16) { errCount++ }

	h := wsrecv.Header{Fin: true, Rsv1: true, OpCode: wsrecv.OpBinary, Length: 3}
	r.Add(wsrecv.MustCompileFrame(wsrecv.Frame{Header: h, Payload: []byte("abc")}))
	assert.Equal(t, 1, errCount)
	assert.Nil(t, r.OnError)

	// Further valid input produces no callbacks; on_error stays nil.
	r.Add(mustHex(t, "810548656c6c6f"))
	assert.Equal(t, 1, errCount)
}

func TestCleanupReleasesExtension(t *testing.T) {
	ext := &stubExtension{}
	r := New(map[string]Extension{"permessage-deflate": ext}, 0)

	r.Cleanup()

	assert.True(t, ext.cleaned)
}

// stubExtension lets TestPostErrorQuarantine trigger a deflate failure
// without depending on package wsflate.
type stubExtension struct {
	err     error
	cleaned bool
}

func (s *stubExtension) Decompress(_ []byte, _ bool, cb func([]byte, error)) {
	cb(nil, s.err)
}
func (s *stubExtension) Cleanup() { s.cleaned = true }

// deflateRaw deflate-compresses data and strips the trailing
// 0x00 0x00 0xff 0xff permessage-deflate tail bytes compress/flate emits.
func deflateRaw(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	out := buf.Bytes()
	require.True(t, bytes.HasSuffix(out, []byte{0x00, 0x00, 0xff, 0xff}))
	return out[:len(out)-4]
}

func TestCompressedMessage(t *testing.T) {
	ext := &deflateStub{}
	r := New(map[string]Extension{"permessage-deflate": ext}, 0)
	var got string
	r.OnText = func(s string) { got = s }

	compressed := deflateRaw(t, []byte("Hello"))
	h := wsrecv.Header{Fin: true, Rsv1: true, OpCode: wsrecv.OpText, Length: uint64(len(compressed))}
	r.Add(wsrecv.MustCompileFrame(wsrecv.Frame{Header: h, Payload: compressed}))

	assert.Equal(t, "Hello", got)
}

func TestCompressedFragments(t *testing.T) {
	ext := &deflateStub{}
	r := New(map[string]Extension{"permessage-deflate": ext}, 0)
	var got string
	r.OnText = func(s string) { got = s }

	whole := deflateRaw(t, []byte("foobar"))
	// Split the single continuous compressed stream across two frames, as a
	// real permessage-deflate sender splits one deflate stream at arbitrary
	// frame boundaries.
	split := len(whole) / 2
	first := wsrecv.Header{Fin: false, Rsv1: true, OpCode: wsrecv.OpText, Length: uint64(split)}
	second := wsrecv.Header{Fin: true, OpCode: wsrecv.OpContinuation, Length: uint64(len(whole) - split)}

	r.Add(wsrecv.MustCompileFrame(wsrecv.Frame{Header: first, Payload: whole[:split]}))
	r.Add(wsrecv.MustCompileFrame(wsrecv.Frame{Header: second, Payload: whole[split:]}))

	assert.Equal(t, "foobar", got)
}

// deflateStub decompresses by buffering compressed fragments and inflating
// the whole message at fin, mirroring package wsflate's Extension without
// importing it (package wsflate imports recv, so recv cannot import back).
type deflateStub struct {
	buf []byte
}

func (d *deflateStub) Decompress(chunk []byte, fin bool, cb func([]byte, error)) {
	d.buf = append(d.buf, chunk...)
	if !fin {
		cb(nil, nil)
		return
	}
	// Restore the tail, then end the stream with an empty final stored
	// block so the reader stops with io.EOF rather than io.ErrUnexpectedEOF.
	input := append(d.buf, 0x00, 0x00, 0xff, 0xff, 0x01, 0x00, 0x00, 0xff, 0xff)
	d.buf = nil
	zr := flate.NewReader(bytes.NewReader(input))
	defer zr.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		cb(nil, err)
		return
	}
	cb(out.Bytes(), nil)
}

func (d *deflateStub) Cleanup() { d.buf = nil }

func TestProtocolErrorOnReservedBits(t *testing.T) {
	r := New(nil, 0)
	var code uint16
	r.OnError = func(_ error, c uint16) { code = c }

	// rsv2 set (fin=1, opcode=continuation, byte1=0): always a protocol error.
	r.Add([]byte{0xa0, 0x00})

	assert.Equal(t, uint16(wsrecv.StatusProtocolError), code)
}

func TestCleanupStopsFurtherDispatch(t *testing.T) {
	r := New(nil, 0)
	calls := 0
	r.OnText = func(_ string) { calls++ }

	r.Cleanup()
	r.Add(mustHex(t, "810548656c6c6f"))

	assert.Equal(t, 0, calls)
}
