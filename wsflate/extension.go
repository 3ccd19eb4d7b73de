// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package wsflate

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/cmacro/wsrecv"
	"github.com/cmacro/wsrecv/recv"
)

// deflateTail is the 4 bytes RFC 7692 section 7.2.1 has the sender elide
// from the end of a compressed message; the receiver must add them back
// before inflating.
var deflateTail = [4]byte{0x00, 0x00, 0xff, 0xff}

// finalBlock is an empty, final stored DEFLATE block. The restored tail is a
// sync-flush marker, not the end of a stream, so compress/flate would report
// io.ErrUnexpectedEOF after draining it; appending this block ends the
// stream cleanly instead.
var finalBlock = [5]byte{0x01, 0x00, 0x00, 0xff, 0xff}

// windowSize is the maximum LZ77 dictionary compress/flate carries between
// messages when context takeover is enabled.
const windowSize = 32768

// Extension is the concrete permessage-deflate collaborator injected into a
// recv.Receiver through its extensions map. It buffers a message's
// compressed frame payloads and inflates them as one continuous stream once
// the final fragment arrives, since per RFC 7692 a message's compressed
// bytes form a single deflate stream split across frame boundaries, not one
// independent stream per frame.
type Extension struct {
	Parameters Parameters

	// MaxPayload mirrors the owning Receiver's cap, applied to the
	// cumulative decompressed bytes of a single message.
	MaxPayload uint64

	compressed []byte
	dict       []byte
}

var _ recv.Extension = (*Extension)(nil)

// Decompress implements recv.Extension. Non-final chunks are only buffered;
// the decompressed bytes for the whole message are produced in one call
// once fin is true.
func (e *Extension) Decompress(chunk []byte, fin bool, cb func([]byte, error)) {
	e.compressed = append(e.compressed, chunk...)
	if !fin {
		cb(nil, nil)
		return
	}

	input := append(e.compressed, deflateTail[:]...)
	input = append(input, finalBlock[:]...)
	e.compressed = e.compressed[:0]

	zr := flate.NewReaderDict(bytes.NewReader(input), e.dict)
	defer zr.Close()

	var r io.Reader = zr
	if e.MaxPayload > 0 {
		r = io.LimitReader(zr, int64(e.MaxPayload)+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		cb(nil, recv.NewExtensionError(err, wsrecv.StatusInvalidFramePayloadData))
		return
	}
	if e.MaxPayload > 0 && uint64(len(out)) > e.MaxPayload {
		cb(nil, recv.NewExtensionError(
			wsrecv.MessageTooBigError("decompressed payload exceeds max_payload"),
			wsrecv.StatusMessageTooBig,
		))
		return
	}

	if !e.Parameters.ServerNoContextTakeover {
		e.dict = window(out)
	}
	cb(out, nil)
}

// Cleanup implements recv.Extension.
func (e *Extension) Cleanup() {
	e.compressed = nil
	e.dict = nil
}

// window returns the trailing windowSize bytes of out, the dictionary
// carried into the next message's inflater when context takeover is in
// effect.
func window(out []byte) []byte {
	if len(out) <= windowSize {
		return out
	}
	return out[len(out)-windowSize:]
}
